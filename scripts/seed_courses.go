// 导入示例课程数据
//
// 从 YAML 文件读取课程、课时与测验题目并写入数据库，用于本地开发或演示环境。
// 已存在同名课程（同租户同讲师）时跳过。
//
// 用法: go run scripts/seed_courses.go -file scripts/seed_courses.yaml

package main

import (
	"flag"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type seedQuestion struct {
	Prompt       string   `yaml:"prompt"`
	Options      []string `yaml:"options"`
	CorrectIndex int      `yaml:"correct_index"`
	Explanation  string   `yaml:"explanation"`
}

type seedLesson struct {
	Title           string         `yaml:"title"`
	Content         string         `yaml:"content"`
	VideoID         string         `yaml:"video_id"`
	DurationSeconds int            `yaml:"duration_seconds"`
	Questions       []seedQuestion `yaml:"questions"`
}

type seedCourse struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	PriceCents  int64        `yaml:"price_cents"`
	Currency    string       `yaml:"currency"`
	Published   bool         `yaml:"published"`
	Lessons     []seedLesson `yaml:"lessons"`
}

type seedFile struct {
	Tenant       string       `yaml:"tenant"`
	InstructorID string       `yaml:"instructor_id"`
	Courses      []seedCourse `yaml:"courses"`
}

func main() {
	file := flag.String("file", "scripts/seed_courses.yaml", "种子数据文件")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg)

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取种子文件: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("解析种子文件失败: %v", err)
	}
	if seed.Tenant == "" {
		seed.Tenant = cfg.Server.DefaultTenant
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	quizRepo := repository.NewQuizRepository(db)

	existing, err := courseRepo.FindByInstructor(seed.Tenant, seed.InstructorID)
	if err != nil {
		log.Fatalf("查询已有课程失败: %v", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, c := range existing {
		titles[c.Title] = true
	}

	for _, sc := range seed.Courses {
		if titles[sc.Title] {
			log.Printf("跳过已存在的课程: %s", sc.Title)
			continue
		}

		currency := sc.Currency
		if currency == "" {
			currency = "USD"
		}
		course := &model.Course{
			TenantID:     seed.Tenant,
			InstructorID: seed.InstructorID,
			Title:        sc.Title,
			Description:  sc.Description,
			PriceCents:   sc.PriceCents,
			Currency:     currency,
			Published:    sc.Published,
		}
		if sc.Published {
			now := time.Now()
			course.PublishedAt = &now
		}
		if err := courseRepo.Create(course); err != nil {
			log.Fatalf("创建课程失败 %s: %v", sc.Title, err)
		}

		for i, sl := range sc.Lessons {
			lesson := &model.Lesson{
				CourseID:        course.ID,
				Title:           sl.Title,
				Content:         sl.Content,
				VideoID:         sl.VideoID,
				DurationSeconds: sl.DurationSeconds,
				Position:        i,
				HasQuiz:         len(sl.Questions) > 0,
			}
			if err := lessonRepo.Create(lesson); err != nil {
				log.Fatalf("创建课时失败 %s: %v", sl.Title, err)
			}

			for j, sq := range sl.Questions {
				q := &model.QuizQuestion{
					LessonID:     lesson.ID,
					Prompt:       sq.Prompt,
					Options:      sq.Options,
					CorrectIndex: sq.CorrectIndex,
					Position:     j,
					Explanation:  sq.Explanation,
				}
				if err := quizRepo.CreateQuestion(q); err != nil {
					log.Fatalf("创建题目失败: %v", err)
				}
			}
		}

		log.Printf("已导入课程: %s (%s)", course.Title, util.EncodeSlug(course.Title, course.ID))
	}
	log.Println("完成！")
}
