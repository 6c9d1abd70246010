package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/diewo77/vae-dossiers/auth"
	"github.com/diewo77/vae-dossiers/internal/iam"
	"github.com/diewo77/vae-dossiers/internal/models"
	"github.com/diewo77/vae-dossiers/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Token actions carried by emailed links.
const (
	ActionFinalizeRegistration = "finalize-registration"
	ActionResetPassword        = "reset-password"
)

const registrationTokenTTL = 4 * time.Hour

// ValidationError wraps field violations of a request.
type ValidationError struct{ Fields validation.Violations }

func (e *ValidationError) Error() string { return "validation_failed" }

type RegistrationService struct {
	DB      *gorm.DB
	Dir     iam.Directory
	Mailer  Mailer
	BaseURL string
	Log     *zap.Logger
	Now     func() time.Time
}

func NewRegistrationService(db *gorm.DB, dir iam.Directory, mailer Mailer, baseURL string, log *zap.Logger) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{DB: db, Dir: dir, Mailer: mailer, BaseURL: baseURL, Log: log, Now: time.Now}
}

// AskForRegistration emails a sign-in reminder to known addresses and a
// registration link to new ones.
func (s *RegistrationService) AskForRegistration(ctx context.Context, email, certificationID string) error {
	email = validation.NormalizeEmail(email)
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	if !v.Empty() {
		return &ValidationError{Fields: v}
	}

	_, err := s.Dir.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.Mailer.Send(ctx, Email{
			To:         email,
			TemplateID: TemplateLogin,
			Params:     map[string]string{"candidateLoginUrl": s.link("/candidat/login", nil)},
		})
	case !errors.Is(err, iam.ErrAccountNotFound):
		return err
	}

	token, err := auth.IssueToken(auth.Claims{
		Email:           email,
		Action:          ActionFinalizeRegistration,
		CertificationID: certificationID,
	}, registrationTokenTTL)
	if err != nil {
		return fmt.Errorf("issue registration token: %w", err)
	}
	return s.Mailer.Send(ctx, Email{
		To:         email,
		TemplateID: TemplateRegistration,
		Params: map[string]string{
			"candidateRegistrationUrl": s.link("/candidat/reset-password", url.Values{"setPasswordToken": {token}}),
		},
	})
}

// AskForPasswordReset emails a reset link to a known address. Unknown
// addresses get nothing and no error.
func (s *RegistrationService) AskForPasswordReset(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	if !v.Empty() {
		return &ValidationError{Fields: v}
	}

	if _, err := s.Dir.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, iam.ErrAccountNotFound) {
			s.Log.Debug("password reset asked for unknown email")
			return nil
		}
		return err
	}
	token, err := auth.IssueToken(auth.Claims{Email: email, Action: ActionResetPassword}, registrationTokenTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	return s.Mailer.Send(ctx, Email{
		To:         email,
		TemplateID: TemplatePasswordReset,
		Params: map[string]string{
			"candidateResetPasswordUrl": s.link("/candidat/reset-password", url.Values{"setPasswordToken": {token}}),
		},
	})
}

func (s *RegistrationService) link(path string, q url.Values) string {
	base, err := url.Parse(s.BaseURL)
	if err != nil || s.BaseURL == "" {
		base = &url.URL{Scheme: "http", Host: "localhost"}
	}
	u := base.ResolveReference(&url.URL{Path: path})
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// ResetPassword consumes an emailed token. Registration tokens finalize the
// account, reset tokens only change the password.
func (s *RegistrationService) ResetPassword(ctx context.Context, token, password string) (*models.Account, error) {
	claims, err := auth.ParseToken(token)
	if err != nil {
		return nil, invalidState("invalid_token")
	}
	switch claims.Action {
	case ActionFinalizeRegistration:
		return s.finalize(ctx, claims, password)
	case ActionResetPassword:
		return s.resetExisting(ctx, claims.Email, password)
	default:
		return nil, invalidState("unknown_action")
	}
}

// FinalizeRegistration sets the password of the account named by a
// registration token, creating the account and its first candidacy when needed.
func (s *RegistrationService) FinalizeRegistration(ctx context.Context, token, password string) (*models.Account, error) {
	claims, err := auth.ParseToken(token)
	if err != nil {
		return nil, invalidState("invalid_token")
	}
	if claims.Action != ActionFinalizeRegistration {
		return nil, invalidState("unknown_action")
	}
	return s.finalize(ctx, claims, password)
}

func checkPassword(password string) error {
	v := validation.Violations{}
	validation.Required("password", password, v)
	validation.MinLength("password", password, 12, "password_too_short", v)
	if !v.Empty() {
		return &ValidationError{Fields: v}
	}
	return nil
}

func (s *RegistrationService) resetExisting(ctx context.Context, email, password string) (*models.Account, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	acc, err := s.Dir.FindByEmail(ctx, email)
	if errors.Is(err, iam.ErrAccountNotFound) {
		return nil, notFound("candidate_not_found")
	}
	if err != nil {
		return nil, err
	}
	var cand models.Candidate
	if err := s.DB.WithContext(ctx).Where("account_id = ?", acc.ID).First(&cand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("candidate_not_found")
		}
		return nil, fmt.Errorf("load candidate: %w", err)
	}
	if err := s.Dir.ResetPassword(ctx, acc.ID, password); err != nil {
		return nil, err
	}
	now := s.Now()
	if err := s.DB.WithContext(ctx).Model(&cand).Update("password_updated_at", now).Error; err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	s.Log.Info("candidate password reset", zap.String("candidate_id", cand.ID))
	return acc, nil
}

func (s *RegistrationService) finalize(ctx context.Context, claims auth.Claims, password string) (*models.Account, error) {
	if _, err := s.Dir.FindByEmail(ctx, claims.Email); err == nil {
		return s.resetExisting(ctx, claims.Email, password)
	} else if !errors.Is(err, iam.ErrAccountNotFound) {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	var dept models.Department
	if err := s.DB.WithContext(ctx).Where("code = ?", models.DefaultDepartmentCode).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("default_department_not_found")
		}
		return nil, fmt.Errorf("load default department: %w", err)
	}

	acc, err := s.Dir.Create(ctx, claims.Email, password, models.RoleCandidate)
	if err != nil {
		return nil, err
	}

	var candidacy models.Candidacy
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cand := models.Candidate{AccountID: acc.ID, Email: acc.Email, DepartmentID: dept.ID}
		if err := tx.Create(&cand).Error; err != nil {
			return fmt.Errorf("create candidate: %w", err)
		}
		candidacy = models.Candidacy{
			CandidateID:        cand.ID,
			Status:             models.StatusProjet,
			TypeAccompagnement: models.TypeAccompagne,
			FinanceModule:      models.FinanceUnifvae,
			FeasibilityFormat:  models.FeasibilityUploadedPDF,
		}
		if err := tx.Create(&candidacy).Error; err != nil {
			return fmt.Errorf("create candidacy: %w", err)
		}
		return tx.Create(&models.CandidacyStatusEntry{CandidacyID: candidacy.ID, Status: models.StatusProjet, IsActive: true}).Error
	})
	if err != nil {
		return nil, err
	}

	if claims.CertificationID != "" {
		if err := s.attachCertification(ctx, &candidacy, claims.CertificationID); err != nil {
			return nil, err
		}
	}
	s.Log.Info("candidate registered", zap.Uint("account_id", acc.ID), zap.String("candidacy_id", candidacy.ID))
	return acc, nil
}

// attachCertification sets the certification chosen before registering when it
// is still available. Unknown or inactive certifications are ignored.
func (s *RegistrationService) attachCertification(ctx context.Context, c *models.Candidacy, certificationID string) error {
	var cert models.Certification
	err := s.DB.WithContext(ctx).First(&cert, "id = ?", certificationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load certification: %w", err)
	}
	if !cert.IsAvailable() {
		return nil
	}
	format := models.FeasibilityUploadedPDF
	if c.TypeAccompagnement == models.TypeAccompagne {
		format = cert.FeasibilityFormat
	}
	return s.DB.WithContext(ctx).Model(c).Updates(map[string]any{
		"certification_id":   cert.ID,
		"feasibility_format": format,
	}).Error
}
