package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cbi/database"
	"cbi/models"
	"cbi/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column scales; values are rounded to these on write.
const (
	MultipleScale = 4
	PriceScale    = 2
	KPIScale      = 4
)

// KPIInput is one named KPI in a submission payload.
type KPIInput struct {
	Name      string              `json:"name" validate:"required"`
	DownValue decimal.NullDecimal `json:"down_value"`
	BaseValue decimal.NullDecimal `json:"base_value"`
	UpValue   decimal.NullDecimal `json:"up_value"`
}

// SubmissionInput is the payload accepted by the recorder.
type SubmissionInput struct {
	Ticker             string              `json:"ticker" validate:"required"`
	Username           string              `json:"username" validate:"required"`
	DownTargetMultiple decimal.NullDecimal `json:"down_target_multiple"`
	BaseTargetMultiple decimal.NullDecimal `json:"base_target_multiple"`
	UpTargetMultiple   decimal.NullDecimal `json:"up_target_multiple"`
	DownTargetPrice    decimal.NullDecimal `json:"down_target_price"`
	BaseTargetPrice    decimal.NullDecimal `json:"base_target_price"`
	UpTargetPrice      decimal.NullDecimal `json:"up_target_price"`
	KPIs               []KPIInput          `json:"kpis" validate:"dive"`

	// Timestamp overrides the submission time; only bulk imports set it.
	Timestamp *time.Time `json:"-"`
	// Payload is the raw request body kept alongside the row.
	Payload []byte `json:"-"`
}

// Recorder writes new submissions and deletes old ones.
type Recorder struct {
	DB     database.Connector
	Clock  *utils.Clock
	Logger *zap.Logger
}

// Record persists in as a new immutable submission followed by its KPI rows. Either everything is
// committed or nothing is.
func (r *Recorder) Record(ctx context.Context, in SubmissionInput) (*models.Submission, error) {
	log := nopIfNil(r.Logger)

	ticker := strings.TrimSpace(in.Ticker)
	if ticker == "" {
		return nil, invalidInput("ticker", "ticker is required")
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalidInput("username", "username is required")
	}

	kpis := make([]models.KPI, 0, len(in.KPIs))
	for i, k := range in.KPIs {
		name := strings.TrimSpace(k.Name)
		if name == "" {
			return nil, invalidInput(fmt.Sprintf("kpis[%d].name", i), "KPI name is required")
		}
		kpis = append(kpis, models.KPI{
			KPIName:   name,
			DownValue: roundNull(k.DownValue, KPIScale),
			BaseValue: roundNull(k.BaseValue, KPIScale),
			UpValue:   roundNull(k.UpValue, KPIScale),
		})
	}

	ts := r.Clock.Now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}

	sub := &models.Submission{
		Ticker:             ticker,
		Username:           username,
		Timestamp:          r.Clock.Storage(ts),
		DownTargetMultiple: roundNull(in.DownTargetMultiple, MultipleScale),
		BaseTargetMultiple: roundNull(in.BaseTargetMultiple, MultipleScale),
		UpTargetMultiple:   roundNull(in.UpTargetMultiple, MultipleScale),
		DownTargetPrice:    roundNull(in.DownTargetPrice, PriceScale),
		BaseTargetPrice:    roundNull(in.BaseTargetPrice, PriceScale),
		UpTargetPrice:      roundNull(in.UpTargetPrice, PriceScale),
	}
	if len(in.Payload) > 0 {
		sub.Payload = datatypes.JSON(in.Payload)
	}

	err := r.DB.Conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(sub).Error; err != nil {
			return errors.Wrap(err, "insert submission")
		}
		if len(kpis) == 0 {
			return nil
		}
		for i := range kpis {
			kpis[i].SubmissionID = sub.ID
		}
		return errors.Wrap(tx.Create(&kpis).Error, "insert kpis")
	})
	if err != nil {
		return nil, storageError(log, "saving submission", err)
	}

	sub.KPIs = kpis
	sub.Timestamp = r.Clock.In(sub.Timestamp)
	log.Info("submission recorded",
		zap.Uint("submission_id", sub.ID),
		zap.String("ticker", sub.Ticker),
		zap.String("username", sub.Username),
		zap.Int("kpis", len(kpis)),
	)
	return sub, nil
}

// Delete hard-deletes one submission and its KPIs and returns the removed row.
func (r *Recorder) Delete(ctx context.Context, id uint) (*models.Submission, error) {
	log := nopIfNil(r.Logger)

	var sub models.Submission
	err := r.DB.Conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&sub, id).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", id).Delete(&models.KPI{}).Error; err != nil {
			return errors.Wrap(err, "delete kpis")
		}
		return errors.Wrap(tx.Delete(&models.Submission{}, id).Error, "delete submission")
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{
			Kind:    KindSubmissionNotFound,
			Field:   "id",
			Message: fmt.Sprintf("Submission with ID %d not found", id),
		}
	}
	if err != nil {
		return nil, storageError(log, "deleting submission", err)
	}

	sub.Timestamp = r.Clock.In(sub.Timestamp)
	log.Info("submission deleted", zap.Uint("submission_id", id), zap.String("ticker", sub.Ticker))
	return &sub, nil
}

func roundNull(d decimal.NullDecimal, places int32) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(places))
}
