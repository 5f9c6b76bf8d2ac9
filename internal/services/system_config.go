package services

import (
	"strconv"

	"github.com/iolph/wpr/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("`key` = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("`key` = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("`group` = ?", group).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// NeutralPeerRating is the score assumed for an employee nobody rated.
func (s *SystemConfigService) NeutralPeerRating() float64 {
	value, err := strconv.ParseFloat(s.GetWithDefault("peer_neutral_rating", "3.0"), 64)
	if err != nil {
		return 3.0
	}
	return value
}

// DashboardCacheTTL returns the aggregate cache lifetime in seconds.
func (s *SystemConfigService) DashboardCacheTTL() int {
	value, err := strconv.Atoi(s.GetWithDefault("dashboard_cache_ttl_seconds", "3600"))
	if err != nil || value <= 0 {
		return 3600
	}
	return value
}

func (s *SystemConfigService) EmailEnabled() bool {
	return s.GetWithDefault("email_enabled", "true") == "true"
}

func (s *SystemConfigService) DigestEnabled() bool {
	return s.GetWithDefault("digest_enabled", "false") == "true"
}

func (s *SystemConfigService) DigestSchedule() string {
	return s.GetWithDefault("digest_schedule", "0 9 * * 1")
}

func (s *SystemConfigService) DigestRecipients() string {
	return s.GetWithDefault("digest_recipients", "")
}
