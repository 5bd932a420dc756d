package seed

import (
	"fmt"
	"math/rand"
	"strings"
)

var (
	firstNames = []string{
		"Александр", "Дмитрий", "Максим", "Сергей", "Андрей", "Алексей", "Артём", "Илья",
		"Иван", "Михаил", "Никита", "Роман", "Анна", "Мария", "Елена", "Ольга",
		"Татьяна", "Наталья", "Ирина", "Екатерина", "Юлия", "Дарья", "Полина", "София",
	}
	lastNames = []string{
		"Иванов", "Петров", "Смирнов", "Козлов", "Соколов", "Попов", "Лебедев", "Новиков",
		"Морозов", "Волков", "Васильев", "Зайцев", "Павлов", "Семёнов", "Голубев", "Белов",
	}
	skillPool = []string{
		"JavaScript", "TypeScript", "React", "Vue.js", "Node.js", "Python", "Go", "Java",
		"Swift", "Kotlin", "Flutter", "Docker", "Kubernetes", "AWS", "PostgreSQL", "Redis",
		"GraphQL", "REST API", "Figma", "UI/UX Design", "SEO", "Content Writing",
	}
	jobTemplates = []struct{ title, description, category string }{
		{"Разработка веб-сайта для интернет-магазина", "Нужен каталог товаров, корзина, оплата и личный кабинет.", "web-development"},
		{"Создание мобильного приложения для доставки еды", "Приложение для iOS и Android с картой, авторизацией и уведомлениями.", "mobile-development"},
		{"Дизайн логотипа и фирменного стиля", "Логотип, палитра, типографика и шаблоны визиток.", "design"},
		{"Разработка REST API для мобильного приложения", "Авторизация, пользователи, заказы и уведомления.", "web-development"},
		{"Настройка CI/CD pipeline", "Сборка, тесты и выкладка через GitHub Actions.", "devops"},
		{"Оптимизация базы данных PostgreSQL", "Ускорить медленные запросы и настроить репликацию.", "devops"},
		{"Создание landing page для стартапа", "Одностраничный сайт с анимациями и формой обратной связи.", "web-development"},
		{"Разработка дашборда для аналитики", "Графики, таблицы и фильтры по параметрам.", "data"},
	}
	durations = []string{"1-2 недели", "до месяца", "1-3 месяца", "3-6 месяцев"}
	levels    = []string{"entry", "intermediate", "expert"}
)

// GenerateOptions задаёт объём случайных данных.
type GenerateOptions struct {
	Clients     int
	Freelancers int
	Jobs        int
	Password    string
}

// Generate собирает случайный набор фикстур. rnd задаёт воспроизводимость.
func Generate(rnd *rand.Rand, opts GenerateOptions) *Fixtures {
	if opts.Password == "" {
		opts.Password = "Password123"
	}
	f := &Fixtures{}

	var clients, freelancers []string
	for i := 0; i < opts.Clients+opts.Freelancers; i++ {
		first := firstNames[rnd.Intn(len(firstNames))]
		last := lastNames[rnd.Intn(len(lastNames))]
		email := fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(toLatin(first)), strings.ToLower(toLatin(last)), i)

		u := UserFixture{
			Email:       email,
			Password:    opts.Password,
			DisplayName: first + " " + last,
			Skills:      pickSkills(rnd, 3+rnd.Intn(5)),
		}
		if i < opts.Clients {
			u.UserType = "client"
			clients = append(clients, email)
		} else {
			u.UserType = "freelancer"
			u.Rating = float64(30+rnd.Intn(21)) / 10
			freelancers = append(freelancers, email)
		}
		f.Users = append(f.Users, u)
	}
	if len(clients) == 0 {
		return f
	}

	for i := 0; i < opts.Jobs; i++ {
		tpl := jobTemplates[rnd.Intn(len(jobTemplates))]
		min := float64(100 + rnd.Intn(500))
		j := JobFixture{
			Key:             fmt.Sprintf("job-%d", i),
			Client:          clients[rnd.Intn(len(clients))],
			Title:           tpl.title,
			Description:     tpl.description,
			Category:        tpl.category,
			Skills:          pickSkills(rnd, 1+rnd.Intn(4)),
			BudgetType:      "fixed",
			BudgetMin:       min,
			BudgetMax:       min + float64(200+rnd.Intn(1000)),
			Duration:        durations[rnd.Intn(len(durations))],
			ExperienceLevel: levels[rnd.Intn(len(levels))],
			Featured:        rnd.Intn(5) == 0,
			Urgent:          rnd.Intn(8) == 0,
		}
		f.Jobs = append(f.Jobs, j)

		// до трёх откликов на заказ от разных исполнителей
		for _, idx := range rnd.Perm(len(freelancers))[:minInt(len(freelancers), rnd.Intn(4))] {
			f.Proposals = append(f.Proposals, ProposalFixture{
				Job:         j.Key,
				Freelancer:  freelancers[idx],
				CoverLetter: "Здравствуйте! Готов взяться за «" + j.Title + "».",
				Budget:      j.BudgetMin + float64(rnd.Intn(int(j.BudgetMax-j.BudgetMin)+1)),
				Duration:    j.Duration,
			})
		}
	}
	return f
}

func pickSkills(rnd *rand.Rand, n int) []string {
	perm := rnd.Perm(len(skillPool))
	out := make([]string, 0, n)
	for _, idx := range perm[:minInt(n, len(perm))] {
		out = append(out, skillPool[idx])
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// toLatin транслитерирует имя для email.
func toLatin(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if val, ok := translit[r]; ok {
			b.WriteString(val)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
