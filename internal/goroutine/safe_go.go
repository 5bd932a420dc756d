package goroutine

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-jobs/internal/logger"
)

// Go запускает fn в отдельной горутине. Паника перехватывается и пишется
// в лог со стеком, процесс продолжает работу.
func Go(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// Recover предназначен для defer в долгоживущих горутинах.
func Recover(name string) {
	if r := recover(); r != nil {
		logger.Log.WithFields(logrus.Fields{
			"goroutine": name,
			"panic":     r,
			"stack":     string(debug.Stack()),
		}).Error("goroutine: перехвачена паника")
	}
}
