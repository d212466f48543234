package validation

import (
	"time"
	"unicode/utf8"

	"stopusing/client/models"
)

const (
	titleMaxLen      = 200
	dutchPayCountMax = 20
)

// Messages are user-facing and localized; one per violated field.
const (
	msgPriceAPI      = "금액은 0 이상의 정수여야 합니다"
	msgPriceForm     = "금액은 1 이상의 정수여야 합니다"
	msgTitle         = "제목은 1자 이상 200자 이하여야 합니다"
	msgSplitCount    = "나눠내기 횟수는 1 이상이어야 합니다"
	msgDutchPayCount = "나눠내기 횟수는 1 이상 20 이하여야 합니다"
	msgStartedAt     = "ISO-8601 형식의 날짜여야 합니다"
	msgType          = "지출 유형이 올바르지 않습니다"
	msgTypeRequired  = "지출 유형을 선택해주세요"
	msgCategory      = "카테고리가 올바르지 않습니다"
)

// TransactionForm is the interactive-form variant of the transaction input,
// with the stricter bounds the UI enforces. StartedAt is a concrete date
// picked in the form, not a wire string.
type TransactionForm struct {
	Price         int64
	Title         string
	Type          models.TransactionType
	Category      *models.Category
	StartedAt     time.Time
	DutchPayCount int
}

// CheckTransactionInput validates a direct creation/update payload:
// price ≥ 0, title 1–200 characters, splitCount ≥ 1, startedAt an optional
// ISO-8601 datetime, type and category optional enum members.
func CheckTransactionInput(in models.TransactionInput) error {
	errs := fieldErrors{}
	if in.Price < 0 {
		errs["price"] = msgPriceAPI
	}
	if n := utf8.RuneCountInString(in.Title); n < 1 || n > titleMaxLen {
		errs["title"] = msgTitle
	}
	if in.SplitCount < 1 {
		errs["splitCount"] = msgSplitCount
	}
	if in.StartedAt != "" {
		if _, err := time.Parse(time.RFC3339, in.StartedAt); err != nil {
			errs["startedAt"] = msgStartedAt
		}
	}
	if in.Type != "" && !in.Type.Valid() {
		errs["type"] = msgType
	}
	if in.Category != nil && !in.Category.Valid() {
		errs["category"] = msgCategory
	}
	return errs.err()
}

// CheckTransactionForm validates interactive form input: price ≥ 1,
// title 1–200 characters, dutchPayCount 1–20, type required.
func CheckTransactionForm(f TransactionForm) error {
	errs := fieldErrors{}
	if f.Price < 1 {
		errs["price"] = msgPriceForm
	}
	if n := utf8.RuneCountInString(f.Title); n < 1 || n > titleMaxLen {
		errs["title"] = msgTitle
	}
	if f.DutchPayCount < 1 || f.DutchPayCount > dutchPayCountMax {
		errs["dutchPayCount"] = msgDutchPayCount
	}
	if !f.Type.Valid() {
		errs["type"] = msgTypeRequired
	}
	if f.Category != nil && !f.Category.Valid() {
		errs["category"] = msgCategory
	}
	return errs.err()
}

// Input converts validated form values into the wire payload.
func (f TransactionForm) Input() models.TransactionInput {
	return models.TransactionInput{
		Price:      f.Price,
		Title:      f.Title,
		Type:       f.Type,
		Category:   f.Category,
		StartedAt:  f.StartedAt.UTC().Format(time.RFC3339),
		SplitCount: f.DutchPayCount,
	}
}
