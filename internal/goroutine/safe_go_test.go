package goroutine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/freelance-jobs/internal/logger"
)

func TestGo_RecoversPanic(t *testing.T) {
	logger.Discard()

	done := make(chan struct{})
	Go("test", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("горутина не завершилась")
	}
}

func TestGo_RunsFunction(t *testing.T) {
	result := make(chan int, 1)
	Go("test", func() { result <- 42 })

	assert.Equal(t, 42, <-result)
}
