package receipt

import "time"

// Receipt represents an uploaded receipt document together with the fields
// extracted from its OCR text. Merchant, Date and Amount are nil when the
// text held no confident match; absence is an expected outcome, not an
// error state.
type Receipt struct {
	ID          string     `json:"id"`
	Merchant    *string    `json:"merchant"`
	Date        *time.Time `json:"date"`
	Amount      *int       `json:"amount"` // Amount in cents
	RawText     string     `json:"raw_text"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
