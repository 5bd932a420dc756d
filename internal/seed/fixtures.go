package seed

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures: набор тестовых данных для команды seed.
type Fixtures struct {
	Users     []UserFixture     `yaml:"users"`
	Jobs      []JobFixture      `yaml:"jobs"`
	Proposals []ProposalFixture `yaml:"proposals"`
}

type UserFixture struct {
	Email       string   `yaml:"email"`
	Password    string   `yaml:"password"`
	DisplayName string   `yaml:"displayName"`
	UserType    string   `yaml:"userType"`
	Rating      float64  `yaml:"rating"`
	Skills      []string `yaml:"skills"`
}

// JobFixture ссылается на клиента по email.
type JobFixture struct {
	Key             string   `yaml:"key"`
	Client          string   `yaml:"client"`
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	Category        string   `yaml:"category"`
	Skills          []string `yaml:"skills"`
	BudgetType      string   `yaml:"budgetType"`
	BudgetMin       float64  `yaml:"budgetMin"`
	BudgetMax       float64  `yaml:"budgetMax"`
	Currency        string   `yaml:"currency"`
	Duration        string   `yaml:"duration"`
	ExperienceLevel string   `yaml:"experienceLevel"`
	Location        string   `yaml:"location"`
	Featured        bool     `yaml:"featured"`
	Urgent          bool     `yaml:"urgent"`
}

// ProposalFixture ссылается на заказ по key и на исполнителя по email.
type ProposalFixture struct {
	Job         string  `yaml:"job"`
	Freelancer  string  `yaml:"freelancer"`
	CoverLetter string  `yaml:"coverLetter"`
	Budget      float64 `yaml:"budget"`
	Duration    string  `yaml:"duration"`
}

func Parse(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("seed: некорректный YAML: %w", err)
	}
	return &f, f.validate()
}

func LoadFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: не удалось открыть %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file)
}

func (f *Fixtures) validate() error {
	emails := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.Email == "" {
			return fmt.Errorf("seed: users[%d]: email обязателен", i)
		}
		if emails[u.Email] {
			return fmt.Errorf("seed: users[%d]: email %s повторяется", i, u.Email)
		}
		emails[u.Email] = true
	}
	keys := make(map[string]bool, len(f.Jobs))
	for i, j := range f.Jobs {
		if !emails[j.Client] {
			return fmt.Errorf("seed: jobs[%d]: неизвестный клиент %q", i, j.Client)
		}
		if j.Key != "" {
			if keys[j.Key] {
				return fmt.Errorf("seed: jobs[%d]: key %s повторяется", i, j.Key)
			}
			keys[j.Key] = true
		}
	}
	for i, p := range f.Proposals {
		if !keys[p.Job] {
			return fmt.Errorf("seed: proposals[%d]: неизвестный заказ %q", i, p.Job)
		}
		if !emails[p.Freelancer] {
			return fmt.Errorf("seed: proposals[%d]: неизвестный исполнитель %q", i, p.Freelancer)
		}
	}
	return nil
}
