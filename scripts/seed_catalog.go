// 导入目录初始数据（大学、模块、标签、学期、提示、题目来源）
//
// 重复执行不会产生重复数据，已存在的记录按名称跳过。
//
// 用法: go run scripts/seed_catalog.go -seed scripts/seed.yaml

package main

import (
	"flag"
	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/pkg/database"
	"kreuzen_backend/pkg/logger"
	"log"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type seedModule struct {
	Name             string   `yaml:"name"`
	IsUniversityWide bool     `yaml:"university_wide"`
	Tags             []string `yaml:"tags"`
}

type seedUniversity struct {
	Name        string       `yaml:"name"`
	MailDomains []string     `yaml:"mail_domains"`
	Majors      []string     `yaml:"majors"`
	Modules     []seedModule `yaml:"modules"`
}

type seedSemester struct {
	Name      string `yaml:"name"`
	StartYear int    `yaml:"start_year"`
	EndYear   int    `yaml:"end_year"`
}

type seedOrigin struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
}

type seedFile struct {
	Universities []seedUniversity `yaml:"universities"`
	Semesters    []seedSemester   `yaml:"semesters"`
	Hints        []string         `yaml:"hints"`
	Origins      []seedOrigin     `yaml:"origins"`
}

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	seedPath := flag.String("seed", "scripts/seed.yaml", "种子数据文件")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatalf("无法读取种子文件: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("解析种子文件失败: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error { return apply(tx, &seed) }); err != nil {
		logger.Log.Fatal("导入失败", zap.Error(err))
	}
	logger.Log.Info("导入完成",
		zap.Int("universities", len(seed.Universities)),
		zap.Int("semesters", len(seed.Semesters)),
		zap.Int("hints", len(seed.Hints)),
	)
}

func apply(tx *gorm.DB, seed *seedFile) error {
	for _, su := range seed.Universities {
		uni := model.University{Name: su.Name}
		if err := tx.Where(model.University{Name: su.Name}).
			Attrs(model.University{AllowedMailDomains: su.MailDomains}).
			FirstOrCreate(&uni).Error; err != nil {
			return err
		}
		for _, name := range su.Majors {
			major := model.Major{Name: name, UniversityID: uni.ID}
			if err := tx.Where(major).FirstOrCreate(&major).Error; err != nil {
				return err
			}
		}
		for _, sm := range su.Modules {
			mod := model.Module{Name: sm.Name, UniversityID: uni.ID}
			if err := tx.Where(mod).
				Attrs(model.Module{IsUniversityWide: sm.IsUniversityWide}).
				FirstOrCreate(&mod).Error; err != nil {
				return err
			}
			for _, name := range sm.Tags {
				tag := model.Tag{Name: name, ModuleID: mod.ID}
				if err := tx.Where(tag).FirstOrCreate(&tag).Error; err != nil {
					return err
				}
			}
		}
	}

	for _, ss := range seed.Semesters {
		sem := model.Semester{Name: ss.Name}
		if err := tx.Where(sem).
			Attrs(model.Semester{StartYear: ss.StartYear, EndYear: ss.EndYear}).
			FirstOrCreate(&sem).Error; err != nil {
			return err
		}
	}

	for _, text := range seed.Hints {
		hint := model.Hint{Text: text}
		if err := tx.Where(hint).Attrs(model.Hint{IsActive: true}).FirstOrCreate(&hint).Error; err != nil {
			return err
		}
	}

	for _, o := range seed.Origins {
		origin := model.QuestionOrigin{Name: o.Name}
		if err := tx.Where(origin).Attrs(model.QuestionOrigin{DisplayName: o.DisplayName}).FirstOrCreate(&origin).Error; err != nil {
			return err
		}
	}
	return nil
}
