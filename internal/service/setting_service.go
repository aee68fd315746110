package service

import (
	"encoding/json"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/repository"
)

// SettingService 系统设置服务
type SettingService struct {
	cfg         *config.Config
	settingRepo repository.SettingRepository
}

// NewSettingService 创建设置服务实例
func NewSettingService(cfg *config.Config, settingRepo repository.SettingRepository) *SettingService {
	return &SettingService{
		cfg:         cfg,
		settingRepo: settingRepo,
	}
}

// InvoiceSettings 账单设置（settings 表 invoice_config 键）
type InvoiceSettings struct {
	NextInvoiceNumber     int64   `json:"next_invoice_number"`
	NumberPrefix          string  `json:"number_prefix"`
	TaxRatePercent        float64 `json:"tax_rate_percent"`
	DefaultCommissionRate float64 `json:"default_commission_rate"`
	MissingAmountFallback float64 `json:"missing_amount_fallback"`
	DueDays               int     `json:"due_days"`
}

// CompanySettings 公司抬头设置（PDF 信头）
type CompanySettings struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	TaxID   string `json:"tax_id"`
}

// defaultInvoiceSettings 从配置构建缺省账单设置
func (s *SettingService) defaultInvoiceSettings() InvoiceSettings {
	return InvoiceSettings{
		NextInvoiceNumber:     1,
		NumberPrefix:          s.cfg.Invoice.NumberPrefix,
		TaxRatePercent:        s.cfg.Invoice.TaxRatePercent,
		DefaultCommissionRate: s.cfg.Invoice.DefaultCommissionRate,
		MissingAmountFallback: s.cfg.Invoice.MissingAmountFallback,
		DueDays:               s.cfg.Invoice.DueDays,
	}
}

func decodeJSON(raw models.JSON, dest interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func encodeJSON(value interface{}) (models.JSON, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var raw models.JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// EnsureInvoiceSettings 确保账单设置行存在，缺失时按配置写入缺省值
// 仅在进程初始化与种子命令中调用，运行期缺行按配置错误处理
func (s *SettingService) EnsureInvoiceSettings() (*InvoiceSettings, error) {
	setting, err := s.settingRepo.GetByKey(constants.SettingKeyInvoiceConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		defaults := s.defaultInvoiceSettings()
		return s.saveInvoiceSettings(s.settingRepo, defaults)
	}
	return s.getInvoiceSettings(s.settingRepo)
}

// GetInvoiceSettings 获取账单设置，设置行缺失视为配置错误
func (s *SettingService) GetInvoiceSettings() (*InvoiceSettings, error) {
	return s.getInvoiceSettings(s.settingRepo)
}

func (s *SettingService) getInvoiceSettings(repo repository.SettingRepository) (*InvoiceSettings, error) {
	setting, err := repo.GetByKey(constants.SettingKeyInvoiceConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrSettingsMissing
	}

	var settings InvoiceSettings
	if err := decodeJSON(setting.ValueJSON, &settings); err != nil {
		return nil, err
	}
	if settings.NextInvoiceNumber <= 0 {
		settings.NextInvoiceNumber = 1
	}
	if settings.NumberPrefix == "" {
		settings.NumberPrefix = s.cfg.Invoice.NumberPrefix
	}
	if settings.DueDays <= 0 {
		settings.DueDays = s.cfg.Invoice.DueDays
	}
	return &settings, nil
}

// UpdateInvoiceSettings 更新账单设置
func (s *SettingService) UpdateInvoiceSettings(settings InvoiceSettings) (*InvoiceSettings, error) {
	return s.saveInvoiceSettings(s.settingRepo, settings)
}

func (s *SettingService) saveInvoiceSettings(repo repository.SettingRepository, settings InvoiceSettings) (*InvoiceSettings, error) {
	if settings.NextInvoiceNumber <= 0 {
		settings.NextInvoiceNumber = 1
	}
	raw, err := encodeJSON(settings)
	if err != nil {
		return nil, err
	}
	if _, err := repo.Upsert(constants.SettingKeyInvoiceConfig, raw); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetCompanySettings 获取公司抬头设置，缺失时回退到配置
func (s *SettingService) GetCompanySettings() (*CompanySettings, error) {
	setting, err := s.settingRepo.GetByKey(constants.SettingKeyCompanyConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return &CompanySettings{
			Name:    s.cfg.Company.Name,
			Address: s.cfg.Company.Address,
			Email:   s.cfg.Company.Email,
			Phone:   s.cfg.Company.Phone,
			TaxID:   s.cfg.Company.TaxID,
		}, nil
	}
	var settings CompanySettings
	if err := decodeJSON(setting.ValueJSON, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateCompanySettings 更新公司抬头设置
func (s *SettingService) UpdateCompanySettings(settings CompanySettings) (*CompanySettings, error) {
	raw, err := encodeJSON(settings)
	if err != nil {
		return nil, err
	}
	if _, err := s.settingRepo.Upsert(constants.SettingKeyCompanyConfig, raw); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetSiteSettings 获取站点设置原始 JSON
func (s *SettingService) GetSiteSettings() (models.JSON, error) {
	setting, err := s.settingRepo.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return models.JSON{}, nil
	}
	return setting.ValueJSON, nil
}

// UpdateSiteSettings 更新站点设置
func (s *SettingService) UpdateSiteSettings(value models.JSON) error {
	_, err := s.settingRepo.Upsert(constants.SettingKeySiteConfig, value)
	return err
}
