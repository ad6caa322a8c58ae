package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stylorenlabs/styloren/internal/clock"
	profiledomain "github.com/stylorenlabs/styloren/internal/profile/domain"
	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
	"github.com/stylorenlabs/styloren/internal/storage"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Node        *snowflake.Node
	Repo        scandomain.Repository
	ProfileRepo profiledomain.Repository
	Store       storage.Store
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	node        *snowflake.Node
	repo        scandomain.Repository
	profileRepo profiledomain.Repository
	store       storage.Store
}

func NewService(p ServiceParam) scandomain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("scanhistory.service"),
		clock:       p.Clock,
		node:        p.Node,
		repo:        p.Repo,
		profileRepo: p.ProfileRepo,
		store:       p.Store,
	}
}

func (s *service) Record(ctx context.Context, userID snowflake.ID, in scandomain.RecordInput) error {
	prof, err := s.profileRepo.Get(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if prof != nil && !prof.SaveScanHistory {
		return nil
	}

	key, err := s.store.PutImage(ctx, userID, in.MIMEType, in.ImageData)
	if err != nil {
		return fmt.Errorf("store image: %w", err)
	}

	// ThumbnailKey stays nil until a real downscaled copy exists; pointing
	// it at the original would advertise a thumbnail that is not one.
	scan := &scandomain.Scan{
		ID:             s.node.Generate(),
		UserID:         userID,
		ImageKey:       key,
		AnalysisText:   in.AnalysisText,
		StyleScore:     in.StyleScore,
		OutfitCategory: in.OutfitCategory,
		CreatedAt:      s.clock.Now(ctx),
	}
	if err := s.repo.Insert(ctx, s.db, scan); err != nil {
		// Remove the orphaned object; the row never existed.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("orphaned image cleanup failed", zap.String("key", key), zap.Error(delErr))
		}
		return fmt.Errorf("insert scan: %w", err)
	}

	return nil
}

func (s *service) List(ctx context.Context, userID snowflake.ID, page int) (*scandomain.Page, error) {
	if page < 0 {
		page = 0
	}

	scans, err := s.repo.ListByUser(ctx, s.db, userID, scandomain.PageSize, page*scandomain.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}

	views := make([]scandomain.ScanView, 0, len(scans))
	for _, scan := range scans {
		view := scandomain.ScanView{
			ID:             scan.ID,
			AnalysisText:   scan.AnalysisText,
			StyleScore:     scan.StyleScore,
			OutfitCategory: scan.OutfitCategory,
			CreatedAt:      scan.CreatedAt,
		}
		// A failed signing leaves the entry without a URL rather than
		// failing the page.
		url, err := s.store.SignedURL(ctx, scan.ImageKey)
		if err != nil {
			s.log.Warn("signed url failed", zap.String("key", scan.ImageKey), zap.Error(err))
		} else {
			view.SignedImageURL = url
		}
		views = append(views, view)
	}

	return &scandomain.Page{
		Scans:   views,
		HasMore: len(scans) == scandomain.PageSize,
	}, nil
}

func (s *service) Delete(ctx context.Context, userID, scanID snowflake.ID) error {
	scan, err := s.repo.Get(ctx, s.db, userID, scanID)
	if err != nil {
		return fmt.Errorf("load scan: %w", err)
	}
	if scan == nil {
		return scandomain.ErrScanNotFound
	}

	// Row first; a dangling object is recoverable, a dangling row is not.
	if err := s.repo.Delete(ctx, s.db, userID, scanID); err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	if err := s.store.Delete(ctx, scan.ImageKey); err != nil {
		s.log.Warn("image delete failed", zap.String("key", scan.ImageKey), zap.Error(err))
	}
	return nil
}

func (s *service) DeleteAll(ctx context.Context, userID snowflake.ID) error {
	keys, err := s.repo.ListKeysByUser(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("list image keys: %w", err)
	}

	deleted, err := s.repo.DeleteAllByUser(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("delete scans: %w", err)
	}

	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("image delete failed", zap.String("key", key), zap.Error(err))
		}
	}

	if deleted > 0 {
		s.log.Info("scan history cleared",
			zap.String("user_id", userID.String()),
			zap.Int64("scans", deleted),
		)
	}
	return nil
}
