package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/promolink-next/internal/config"
	"github.com/promolink-next/internal/constants"
	"github.com/promolink-next/internal/models"
	"github.com/promolink-next/internal/queue"
	"github.com/promolink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupInfluencerServiceTest(t *testing.T) (*InfluencerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:influencer_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Influencer{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.Invoice.DefaultCommissionRate = 10
	cfg.Security.PasswordPolicy.MinLength = 8

	queueClient, _ := queue.NewClient(&config.QueueConfig{Enabled: false})
	return NewInfluencerService(cfg, repository.NewInfluencerRepository(db), queueClient), db
}

func TestInfluencerCreateNormalizes(t *testing.T) {
	svc, _ := setupInfluencerServiceTest(t)

	influencer, err := svc.Create(InfluencerInput{
		Reference: "  alice  ",
		Name:      "Alice Wang",
		Email:     "Alice@Example.COM",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if influencer.Reference != "ALICE" {
		t.Errorf("expected uppercased reference, got %s", influencer.Reference)
	}
	if influencer.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %s", influencer.Email)
	}
	if influencer.Status != constants.InfluencerStatusActive {
		t.Errorf("expected default active status, got %s", influencer.Status)
	}
	if influencer.CommissionRate.String() != "10.00" {
		t.Errorf("expected default commission rate 10.00, got %s", influencer.CommissionRate.String())
	}
}

func TestInfluencerCreateDuplicatesDoNotMutate(t *testing.T) {
	svc, db := setupInfluencerServiceTest(t)

	original, err := svc.Create(InfluencerInput{Reference: "alice", Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Create(InfluencerInput{Reference: "ALICE", Name: "Impostor", Email: "other@example.com"}); !errors.Is(err, ErrDuplicateReference) {
		t.Errorf("expected ErrDuplicateReference, got %v", err)
	}
	if _, err := svc.Create(InfluencerInput{Reference: "bob", Name: "Bob", Email: "ALICE@example.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	// 既有记录不受影响
	var count int64
	db.Model(&models.Influencer{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 influencer, got %d", count)
	}
	reloaded, err := svc.GetByID(original.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Name != "Alice" {
		t.Errorf("existing row mutated: %s", reloaded.Name)
	}
}

func TestInfluencerUpdateKeepsUniqueness(t *testing.T) {
	svc, _ := setupInfluencerServiceTest(t)

	if _, err := svc.Create(InfluencerInput{Reference: "alice", Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	bob, err := svc.Create(InfluencerInput{Reference: "bob", Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Update(bob.ID, InfluencerInput{Reference: "ALICE", Name: "Bob", Email: "bob@example.com"}); !errors.Is(err, ErrDuplicateReference) {
		t.Errorf("expected ErrDuplicateReference on update, got %v", err)
	}

	// 更新自身保留原编码不算冲突
	rate := decimal.RequireFromString("15")
	updated, err := svc.Update(bob.ID, InfluencerInput{Reference: "bob", Name: "Bobby", Email: "bob@example.com", CommissionRate: &rate})
	if err != nil {
		t.Fatalf("self update failed: %v", err)
	}
	if updated.Name != "Bobby" || updated.CommissionRate.String() != "15.00" {
		t.Errorf("unexpected update result: %s / %s", updated.Name, updated.CommissionRate.String())
	}
}

func TestInfluencerUpdateProfileRestrictsFields(t *testing.T) {
	svc, _ := setupInfluencerServiceTest(t)

	rate := decimal.RequireFromString("20")
	influencer, err := svc.Create(InfluencerInput{Reference: "alice", Name: "Alice", Email: "alice@example.com", CommissionRate: &rate})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	other := decimal.RequireFromString("99")
	updated, err := svc.UpdateProfile(influencer.ID, InfluencerInput{
		Name:           "Alice W",
		Phone:          "13800000000",
		Instagram:      "alice.w",
		CommissionRate: &other,
		Status:         constants.InfluencerStatusInactive,
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Name != "Alice W" || updated.Instagram != "alice.w" {
		t.Errorf("profile fields not applied: %+v", updated)
	}
	// 自助接口不得修改佣金与状态
	if updated.CommissionRate.String() != "20.00" {
		t.Errorf("commission rate changed via profile update: %s", updated.CommissionRate.String())
	}
	if updated.Status != constants.InfluencerStatusActive {
		t.Errorf("status changed via profile update: %s", updated.Status)
	}
}

func TestInfluencerRegisterForcesPending(t *testing.T) {
	svc, _ := setupInfluencerServiceTest(t)

	var welcome []queue.EmailDispatchPayload
	svc.queueClient.SetEmailFallback(func(payload queue.EmailDispatchPayload) {
		welcome = append(welcome, payload)
	})

	influencer, err := svc.Register(InfluencerInput{
		Reference: "carol",
		Name:      "Carol",
		Email:     "carol@example.com",
		Password:  "Passw0rdOK",
		Status:    constants.InfluencerStatusActive,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if influencer.Status != constants.InfluencerStatusPending {
		t.Errorf("expected pending status, got %s", influencer.Status)
	}
	if influencer.PasswordHash == "" || influencer.PasswordHash == "Passw0rdOK" {
		t.Errorf("expected hashed password")
	}
	if len(welcome) != 1 {
		t.Fatalf("expected 1 welcome email, got %d", len(welcome))
	}
	if welcome[0].Template != constants.EmailTemplateWelcome {
		t.Errorf("unexpected template %s", welcome[0].Template)
	}
	if welcome[0].Params["name"] != "Carol" || welcome[0].Params["username"] != "carol@example.com" {
		t.Errorf("unexpected welcome params: %v", welcome[0].Params)
	}

	if _, err := svc.Register(InfluencerInput{Reference: "dave", Name: "Dave", Email: "dave@example.com"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput without password, got %v", err)
	}
}

func TestInfluencerCSVRoundTrip(t *testing.T) {
	svc, _ := setupInfluencerServiceTest(t)

	csvData := strings.Join([]string{
		"reference,name,email,phone,instagram,tiktok,youtube,commission_rate,status,notes",
		"alice,Alice,alice@example.com,,alice.ig,,,12.5,active,vip",
		"bob,Bob,bob@example.com,,,,,,,",
		"alice,Alice Chen,alice.chen@example.com,,,,,15,,",
		"carol,Carol,bob@example.com,,,,,,,",
		"broken,only-two-cols",
	}, "\n")

	result, err := svc.ImportCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Created != 2 {
		t.Errorf("expected 2 created, got %d", result.Created)
	}
	// 编码已存在的行按行更新
	if result.Updated != 1 {
		t.Errorf("expected 1 updated, got %d", result.Updated)
	}
	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", result.Skipped)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 row errors, got %v", result.Errors)
	}

	alice, err := svc.GetByReference("ALICE")
	if err != nil {
		t.Fatalf("reload alice failed: %v", err)
	}
	if alice.Name != "Alice Chen" || alice.Email != "alice.chen@example.com" {
		t.Errorf("upsert row not applied: %s / %s", alice.Name, alice.Email)
	}
	if alice.CommissionRate.String() != "15.00" {
		t.Errorf("expected updated commission rate 15.00, got %s", alice.CommissionRate.String())
	}

	exported, err := svc.ExportCSV()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !bytes.Contains(exported, []byte("ALICE,Alice Chen,alice.chen@example.com")) {
		t.Errorf("export missing upserted row: %s", exported)
	}
	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}
}

func TestInfluencerUniqueViolationMapsToConflict(t *testing.T) {
	svc, db := setupInfluencerServiceTest(t)

	if _, err := svc.Create(InfluencerInput{Reference: "alice", Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 预检之后落库前另一请求插入同编码时，唯一索引冲突需报同样的业务冲突
	dup := models.Influencer{
		Reference:      "ALICE",
		Name:           "Race",
		Email:          "race@example.com",
		CommissionRate: models.NewMoneyFromFloat(10),
		Status:         constants.InfluencerStatusActive,
	}
	err := db.Create(&dup).Error
	if err == nil {
		t.Fatalf("expected unique violation from direct insert")
	}
	if mapped := mapDuplicateError(err); !errors.Is(mapped, ErrDuplicateReference) {
		t.Errorf("expected ErrDuplicateReference, got %v", mapped)
	}

	dupEmail := models.Influencer{
		Reference:      "BOB",
		Name:           "Race",
		Email:          "alice@example.com",
		CommissionRate: models.NewMoneyFromFloat(10),
		Status:         constants.InfluencerStatusActive,
	}
	err = db.Create(&dupEmail).Error
	if err == nil {
		t.Fatalf("expected unique violation from direct insert")
	}
	if mapped := mapDuplicateError(err); !errors.Is(mapped, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", mapped)
	}

	if mapped := mapDuplicateError(errors.New("disk I/O error")); mapped == nil || errors.Is(mapped, ErrDuplicateReference) {
		t.Errorf("non-duplicate errors must pass through, got %v", mapped)
	}
}

func TestInfluencerDelete(t *testing.T) {
	svc, _ := setupInfluencerServiceTest(t)

	influencer, err := svc.Create(InfluencerInput{Reference: "alice", Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(influencer.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetByID(influencer.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(influencer.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
