package service

import (
	"context"
	"errors"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"
	"kreuzen_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogLinkService 维护专业/方向与模块的关联，以及用户订阅的专业和方向
type CatalogLinkService struct {
	Repo     *repository.CatalogLinkRepository
	Majors   *repository.CatalogRepository[model.Major]
	Sections *repository.CatalogRepository[model.Section]
	Modules  *repository.CatalogRepository[model.Module]
	Users    *repository.UserRepository
	DB       *gorm.DB
}

func NewCatalogLinkService(db *gorm.DB) *CatalogLinkService {
	return &CatalogLinkService{
		Repo:     repository.NewCatalogLinkRepository(db),
		Majors:   repository.NewCatalogRepository[model.Major](db),
		Sections: repository.NewCatalogRepository[model.Section](db),
		Modules:  repository.NewCatalogRepository[model.Module](db),
		Users:    repository.NewUserRepository(db),
		DB:       db,
	}
}

// mustExist 找不到时返回 NotFoundError
func mustExist(exists func(id uint) (bool, error), resource string, id uint) error {
	ok, err := exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return util.NewNotFound(resource, id)
	}
	return nil
}

// selfOrAdmin 订阅只能由本人或管理员查看和修改
func selfOrAdmin(actor Actor, userID uint) error {
	if actor.UserID != userID && !actor.IsAdmin() {
		return util.ErrPermissionDenied
	}
	return nil
}

func (s *CatalogLinkService) LinkModuleToMajor(ctx context.Context, majorID, moduleID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(s.Majors.WithTx(tx).Exists, "major", majorID); err != nil {
			return err
		}
		if err := mustExist(s.Modules.WithTx(tx).Exists, "module", moduleID); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).LinkMajorModule(majorID, moduleID)
	})
}

func (s *CatalogLinkService) UnlinkModuleFromMajor(ctx context.Context, majorID, moduleID uint) error {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).UnlinkMajorModule(majorID, moduleID)
}

func (s *CatalogLinkService) LinkModuleToSection(ctx context.Context, sectionID, moduleID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(s.Sections.WithTx(tx).Exists, "section", sectionID); err != nil {
			return err
		}
		if err := mustExist(s.Modules.WithTx(tx).Exists, "module", moduleID); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).LinkSectionModule(sectionID, moduleID)
	})
}

func (s *CatalogLinkService) UnlinkModuleFromSection(ctx context.Context, sectionID, moduleID uint) error {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).UnlinkSectionModule(sectionID, moduleID)
}

func (s *CatalogLinkService) ModulesByMajor(ctx context.Context, majorID uint) ([]model.Module, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ModulesByMajor(majorID)
}

func (s *CatalogLinkService) ModulesBySection(ctx context.Context, sectionID uint) ([]model.Module, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ModulesBySection(sectionID)
}

func (s *CatalogLinkService) MajorsByModule(ctx context.Context, moduleID uint) ([]model.Major, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).MajorsByModule(moduleID)
}

func (s *CatalogLinkService) SectionsByModule(ctx context.Context, moduleID uint) ([]model.Section, error) {
	return s.Repo.WithTx(s.DB.WithContext(ctx)).SectionsByModule(moduleID)
}

func (s *CatalogLinkService) SubscribeMajor(ctx context.Context, actor Actor, userID, majorID uint) error {
	if err := selfOrAdmin(actor, userID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireUser(tx, userID); err != nil {
			return err
		}
		if err := mustExist(s.Majors.WithTx(tx).Exists, "major", majorID); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).AddUserMajor(userID, majorID)
	})
}

// UnsubscribeMajor 同时移除该专业下已选的方向
func (s *CatalogLinkService) UnsubscribeMajor(ctx context.Context, actor Actor, userID, majorID uint) error {
	if err := selfOrAdmin(actor, userID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND major_id = ?", userID, majorID).Delete(&model.UserSection{}).Error; err != nil {
			return err
		}
		return s.Repo.WithTx(tx).RemoveUserMajor(userID, majorID)
	})
}

func (s *CatalogLinkService) MajorsOfUser(ctx context.Context, actor Actor, userID uint) ([]model.Major, error) {
	if err := selfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).MajorsByUser(userID)
}

// SubscribeSection 方向须属于 majorID
func (s *CatalogLinkService) SubscribeSection(ctx context.Context, actor Actor, userID, majorID, sectionID uint) error {
	if err := selfOrAdmin(actor, userID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireUser(tx, userID); err != nil {
			return err
		}
		section, err := s.Sections.WithTx(tx).FindByID(sectionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NewNotFound("section", sectionID)
			}
			return err
		}
		if section.MajorID != majorID {
			return util.NewValidationError("sectionId", "section does not belong to the major")
		}
		if err := s.Repo.WithTx(tx).AddUserSection(userID, majorID, sectionID); err != nil {
			return err
		}
		logger.Log.Debug("section subscribed",
			zap.Uint("user", userID),
			zap.Uint("section", sectionID))
		return nil
	})
}

func (s *CatalogLinkService) UnsubscribeSection(ctx context.Context, actor Actor, userID, sectionID uint) error {
	if err := selfOrAdmin(actor, userID); err != nil {
		return err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).RemoveUserSection(userID, sectionID)
}

func (s *CatalogLinkService) SectionsOfUser(ctx context.Context, actor Actor, userID, majorID uint) ([]model.Section, error) {
	if err := selfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).SectionsByUser(userID, majorID)
}

// ModulesOfUser 用户可见的模块
func (s *CatalogLinkService) ModulesOfUser(ctx context.Context, actor Actor, userID uint) ([]model.Module, error) {
	if err := selfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ModulesByUser(userID)
}

func (s *CatalogLinkService) requireUser(tx *gorm.DB, userID uint) error {
	_, err := s.Users.WithTx(tx).FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NewNotFound("user", userID)
	}
	return err
}
