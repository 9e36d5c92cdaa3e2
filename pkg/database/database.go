package database

import (
	"fmt"
	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models 需要迁移的全部表
var Models = []interface{}{
	&model.University{},
	&model.Major{},
	&model.Section{},
	&model.User{},
	&model.UserToken{},
	&model.Module{},
	&model.MajorModule{},
	&model.SectionModule{},
	&model.UserMajor{},
	&model.UserSection{},
	&model.Semester{},
	&model.Course{},
	&model.Exam{},
	&model.Tag{},
	&model.Hint{},
	&model.QuestionOrigin{},
	&model.Question{},
	&model.QuestionTag{},
	&model.SingleChoiceQuestion{},
	&model.SingleChoiceAnswer{},
	&model.MultipleChoiceQuestion{},
	&model.MultipleChoiceAnswer{},
	&model.AssignmentQuestion{},
	&model.AssignmentIdentifier{},
	&model.AssignmentAnswer{},
	&model.Session{},
	&model.SessionQuestion{},
	&model.SingleChoiceSelection{},
	&model.MultipleChoiceSelection{},
	&model.AssignmentSelection{},
	&model.Comment{},
	&model.ErrorReport{},
}

// DefaultOrigins 题目来源初始数据
var DefaultOrigins = []model.QuestionOrigin{
	{Name: "original", DisplayName: "Original exam question"},
	{Name: "memory", DisplayName: "Memory protocol"},
	{Name: "exercise", DisplayName: "Exercise sheet"},
	{Name: "user", DisplayName: "User contributed"},
}

// Dialector 按配置选择数据库驱动
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector, cfg.LogSQL)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established", zap.String("driver", db.Dialector.Name()))
	return db, nil
}

func Open(dialector gorm.Dialector, logSQL bool) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logSQL),
	})
}

// Migrate 建表并写入初始数据
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}
	logger.Log.Info("Database migration completed")
	return SeedOrigins(db)
}

func SeedOrigins(db *gorm.DB) error {
	origins := append([]model.QuestionOrigin(nil), DefaultOrigins...)
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&origins).Error
}
