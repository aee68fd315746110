package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/queue"
	"github.com/promolink-next/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// InfluencerService 达人管理服务
type InfluencerService struct {
	cfg            *config.Config
	influencerRepo repository.InfluencerRepository
	queueClient    *queue.Client
}

// NewInfluencerService 创建达人管理服务实例
func NewInfluencerService(cfg *config.Config, influencerRepo repository.InfluencerRepository, queueClient *queue.Client) *InfluencerService {
	return &InfluencerService{
		cfg:            cfg,
		influencerRepo: influencerRepo,
		queueClient:    queueClient,
	}
}

// InfluencerInput 创建/更新达人的输入
type InfluencerInput struct {
	Reference      string
	Name           string
	Email          string
	Password       string
	Phone          string
	Instagram      string
	TikTok         string
	YouTube        string
	CommissionRate *decimal.Decimal
	Status         string
	Notes          string
}

func normalizeReference(reference string) string {
	return strings.ToUpper(strings.TrimSpace(reference))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkDuplicates 校验推广编码与邮箱唯一性，excludeID 用于更新时排除自身
func (s *InfluencerService) checkDuplicates(reference, email string, excludeID uint) error {
	if reference != "" {
		existing, err := s.influencerRepo.GetByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != excludeID {
			return ErrDuplicateReference
		}
	}
	if email != "" {
		existing, err := s.influencerRepo.GetByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != excludeID {
			return ErrDuplicateEmail
		}
	}
	return nil
}

// Create 管理端创建达人
func (s *InfluencerService) Create(input InfluencerInput) (*models.Influencer, error) {
	reference := normalizeReference(input.Reference)
	email := normalizeEmail(input.Email)
	if reference == "" || strings.TrimSpace(input.Name) == "" || email == "" {
		return nil, ErrInvalidInput
	}

	if err := s.checkDuplicates(reference, email, 0); err != nil {
		return nil, err
	}

	rate := decimal.NewFromFloat(s.cfg.Invoice.DefaultCommissionRate)
	if input.CommissionRate != nil {
		rate = *input.CommissionRate
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.InfluencerStatusActive
	}

	influencer := &models.Influencer{
		Reference:      reference,
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		Phone:          strings.TrimSpace(input.Phone),
		Instagram:      strings.TrimSpace(input.Instagram),
		TikTok:         strings.TrimSpace(input.TikTok),
		YouTube:        strings.TrimSpace(input.YouTube),
		CommissionRate: models.NewMoneyFromDecimal(rate),
		Status:         status,
		Notes:          input.Notes,
	}

	if input.Password != "" {
		if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		influencer.PasswordHash = string(hash)
	}

	if err := s.influencerRepo.Create(influencer); err != nil {
		return nil, mapDuplicateError(err)
	}

	logger.Infow("influencer_created", "influencer_id", influencer.ID, "reference", influencer.Reference)
	return influencer, nil
}

// Register 达人自助注册，初始状态为待审核
func (s *InfluencerService) Register(input InfluencerInput) (*models.Influencer, error) {
	if input.Password == "" {
		return nil, ErrInvalidInput
	}
	input.Status = constants.InfluencerStatusPending
	influencer, err := s.Create(input)
	if err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueEmailDispatch(queue.EmailDispatchPayload{
		Template:  constants.EmailTemplateWelcome,
		Recipient: influencer.Email,
		Params: map[string]string{
			"name":     influencer.Name,
			"username": influencer.Email,
		},
	}); err != nil {
		logger.Errorw("welcome_email_enqueue_failed", "error", err, "influencer_id", influencer.ID)
	}

	return influencer, nil
}

// GetByID 获取达人
func (s *InfluencerService) GetByID(id uint) (*models.Influencer, error) {
	influencer, err := s.influencerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if influencer == nil {
		return nil, ErrNotFound
	}
	return influencer, nil
}

// GetByReference 根据推广编码获取达人
func (s *InfluencerService) GetByReference(reference string) (*models.Influencer, error) {
	influencer, err := s.influencerRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if influencer == nil {
		return nil, ErrNotFound
	}
	return influencer, nil
}

// List 达人列表
func (s *InfluencerService) List(filter repository.InfluencerListFilter) ([]models.Influencer, int64, error) {
	return s.influencerRepo.List(filter)
}

// Update 管理端更新达人
func (s *InfluencerService) Update(id uint, input InfluencerInput) (*models.Influencer, error) {
	influencer, err := s.influencerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if influencer == nil {
		return nil, ErrNotFound
	}

	reference := normalizeReference(input.Reference)
	email := normalizeEmail(input.Email)
	if err := s.checkDuplicates(reference, email, id); err != nil {
		return nil, err
	}

	if reference != "" {
		influencer.Reference = reference
	}
	if strings.TrimSpace(input.Name) != "" {
		influencer.Name = strings.TrimSpace(input.Name)
	}
	if email != "" {
		influencer.Email = email
	}
	influencer.Phone = strings.TrimSpace(input.Phone)
	influencer.Instagram = strings.TrimSpace(input.Instagram)
	influencer.TikTok = strings.TrimSpace(input.TikTok)
	influencer.YouTube = strings.TrimSpace(input.YouTube)
	if input.CommissionRate != nil {
		influencer.CommissionRate = models.NewMoneyFromDecimal(*input.CommissionRate)
	}
	if strings.TrimSpace(input.Status) != "" {
		influencer.Status = strings.TrimSpace(input.Status)
	}
	influencer.Notes = input.Notes

	if err := s.influencerRepo.Update(influencer); err != nil {
		return nil, mapDuplicateError(err)
	}
	return influencer, nil
}

// UpdateProfile 达人自助更新资料（不允许改编码/状态/佣金）
func (s *InfluencerService) UpdateProfile(id uint, input InfluencerInput) (*models.Influencer, error) {
	influencer, err := s.influencerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if influencer == nil {
		return nil, ErrNotFound
	}

	email := normalizeEmail(input.Email)
	if email != "" && email != influencer.Email {
		if err := s.checkDuplicates("", email, id); err != nil {
			return nil, err
		}
		influencer.Email = email
	}
	if strings.TrimSpace(input.Name) != "" {
		influencer.Name = strings.TrimSpace(input.Name)
	}
	influencer.Phone = strings.TrimSpace(input.Phone)
	influencer.Instagram = strings.TrimSpace(input.Instagram)
	influencer.TikTok = strings.TrimSpace(input.TikTok)
	influencer.YouTube = strings.TrimSpace(input.YouTube)

	if err := s.influencerRepo.Update(influencer); err != nil {
		return nil, mapDuplicateError(err)
	}
	return influencer, nil
}

// Delete 删除达人（软删除，不级联账单）
func (s *InfluencerService) Delete(id uint) error {
	influencer, err := s.influencerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if influencer == nil {
		return ErrNotFound
	}
	return s.influencerRepo.Delete(id)
}

// csvHeader 导入/导出共用的列布局
var csvHeader = []string{"reference", "name", "email", "phone", "instagram", "tiktok", "youtube", "commission_rate", "status", "notes"}

// ExportCSV 导出全部达人为 CSV
func (s *InfluencerService) ExportCSV() ([]byte, error) {
	influencers, err := s.influencerRepo.ListAll()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, inf := range influencers {
		record := []string{
			inf.Reference,
			inf.Name,
			inf.Email,
			inf.Phone,
			inf.Instagram,
			inf.TikTok,
			inf.YouTube,
			inf.CommissionRate.String(),
			inf.Status,
			inf.Notes,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVImportResult CSV 导入结果
type CSVImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportCSV 批量导入达人
// 首行为表头；编码已存在的行按行更新（upsert），无效行跳过并记录，不中断整体导入
func (s *InfluencerService) ImportCSV(r io.Reader) (*CSVImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	result := &CSVImportResult{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV 解析失败: %w", err)
		}
		line++
		if line == 1 {
			continue
		}
		if len(record) < 3 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: 列数不足", line))
			continue
		}

		input := InfluencerInput{
			Reference: record[0],
			Name:      record[1],
			Email:     record[2],
		}
		if len(record) > 3 {
			input.Phone = record[3]
		}
		if len(record) > 4 {
			input.Instagram = record[4]
		}
		if len(record) > 5 {
			input.TikTok = record[5]
		}
		if len(record) > 6 {
			input.YouTube = record[6]
		}
		if len(record) > 7 && strings.TrimSpace(record[7]) != "" {
			rate, err := decimal.NewFromString(strings.TrimSpace(record[7]))
			if err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: 佣金比例无效", line))
				continue
			}
			input.CommissionRate = &rate
		}
		if len(record) > 8 {
			input.Status = record[8]
		}
		if len(record) > 9 {
			input.Notes = record[9]
		}

		var existing *models.Influencer
		if reference := normalizeReference(input.Reference); reference != "" {
			existing, err = s.influencerRepo.GetByReference(reference)
			if err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %v", line, err))
				continue
			}
		}
		if existing != nil {
			if _, err := s.Update(existing.ID, input); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %v", line, err))
				continue
			}
			result.Updated++
			continue
		}
		if _, err := s.Create(input); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %v", line, err))
			continue
		}
		result.Created++
	}

	logger.Infow("influencer_csv_import_done", "created", result.Created, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}
