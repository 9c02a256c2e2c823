package database

import (
	"context"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewConnection(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	return mysql.NewConnection(context.Background(), cfg.Database, logger)
}
