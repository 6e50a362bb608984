package transaction

import (
	"strings"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/common/validation"
	"github.com/frahmantamala/personal-finance/internal/core/period"
	"github.com/shopspring/decimal"
)

const maxDescriptionLength = 500

// CreateTransactionDTO is the POST /transactions body. type is mandatory.
type CreateTransactionDTO struct {
	Amount      decimal.NullDecimal `json:"amount"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Category    string              `json:"category"`
	Type        string              `json:"type"`
}

func (dto *CreateTransactionDTO) Normalize() {
	dto.Description = strings.TrimSpace(dto.Description)
	dto.Category = strings.TrimSpace(dto.Category)
	dto.Type = strings.ToLower(strings.TrimSpace(dto.Type))
}

func (dto CreateTransactionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).Required().Positive(errors.ErrCodeInvalidAmount)
	v.Field("date", dto.Date).Required().Date()
	v.Field("category", dto.Category).Required().MaxLength(100)
	v.Field("type", dto.Type).Required().OneOf(Types, errors.ErrCodeInvalidType)
	v.Field("description", dto.Description).MaxLength(maxDescriptionLength)
	return v.Validate()
}

// PatchTransactionDTO carries the allow-listed fields of PATCH /transactions; nil means unchanged.
// Any other key in the request body is ignored.
type PatchTransactionDTO struct {
	Amount      decimal.NullDecimal `json:"amount"`
	Description *string             `json:"description"`
	Date        *string             `json:"date"`
	Category    *string             `json:"category"`
	Type        *string             `json:"type"`
}

func (dto *PatchTransactionDTO) Normalize() {
	for _, s := range []*string{dto.Description, dto.Category, dto.Date} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	if dto.Type != nil {
		*dto.Type = strings.ToLower(strings.TrimSpace(*dto.Type))
	}
}

func (dto PatchTransactionDTO) IsEmpty() bool {
	return !dto.Amount.Valid && dto.Description == nil && dto.Date == nil && dto.Category == nil && dto.Type == nil
}

func (dto PatchTransactionDTO) Validate() *errors.AppError {
	if dto.IsEmpty() {
		return errors.NewValidationError("No updatable fields provided", errors.ErrCodeValidationFailed)
	}

	v := validation.NewValidator()
	v.Field("amount", dto.Amount).Positive(errors.ErrCodeInvalidAmount)
	v.Field("description", dto.Description).MaxLength(maxDescriptionLength)
	if dto.Date != nil {
		v.Field("date", dto.Date).Required().Date()
	}
	if dto.Category != nil {
		v.Field("category", dto.Category).Required().MaxLength(100)
	}
	if dto.Type != nil {
		v.Field("type", dto.Type).Required().OneOf(Types, errors.ErrCodeInvalidType)
	}
	return v.Validate()
}

// Updates converts the patch into column updates. Call only after Validate.
func (dto PatchTransactionDTO) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if dto.Amount.Valid {
		updates["amount"] = dto.Amount.Decimal
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Date != nil {
		date, _ := period.ParseDate(*dto.Date)
		updates["date"] = date
	}
	if dto.Category != nil {
		updates["category"] = *dto.Category
	}
	if dto.Type != nil {
		updates["type"] = *dto.Type
	}
	return updates
}
