// Package checkout runs the strictly linear purchase pipeline:
// Cart -> Shipping -> Payment -> Complete. Shipping data is staged in an
// ephemeral session store (a browser tab's sessionStorage, not the durable
// cart store) and payment is simulated — validation happens, no gateway is
// called, and success clears both the cart and the staged shipping data.
package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/snailmailtreasures/marketplace/pkg/cart"
)

const ShippingKey = "shippingInfo"

var (
	// ErrEmptyCart redirects the user back to the cart step.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoShipping redirects the user back to the shipping step.
	ErrNoShipping = errors.New("no shipping information staged")
)

type Step int

const (
	StepCart Step = iota
	StepShipping
	StepPayment
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepCart:
		return "cart"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepComplete:
		return "complete"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// FieldErrors maps field names to messages. Validation failures are
// field-scoped and non-fatal: the form stays editable.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

type ShippingInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

type PaymentInfo struct {
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	ExpiryDate string `json:"expiryDate"` // MM/YY
	CVV        string `json:"cvv"`
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type Flow struct {
	cart    *cart.Store
	session cart.Storage
	now     func() time.Time
}

func NewFlow(c *cart.Store, session cart.Storage) *Flow {
	return &Flow{cart: c, session: session, now: time.Now}
}

// Step reports where in the pipeline the user may currently be, derived
// from cart and session state rather than stored separately, so reloading
// the tab lands on the right page.
func (f *Flow) Step() Step {
	if f.cart.ItemCount() == 0 {
		return StepCart
	}
	if _, ok := f.StagedShipping(); !ok {
		return StepShipping
	}
	return StepPayment
}

// EnterShipping guards the shipping page: an empty cart bounces back.
func (f *Flow) EnterShipping() error {
	if f.cart.ItemCount() == 0 {
		return ErrEmptyCart
	}
	return nil
}

// SubmitShipping validates and stages the contact/address form. Staged
// data lives only for the session.
func (f *Flow) SubmitShipping(info ShippingInfo) error {
	if err := f.EnterShipping(); err != nil {
		return err
	}

	fe := FieldErrors{}
	requireField(fe, "firstName", info.FirstName, "First name is required")
	requireField(fe, "lastName", info.LastName, "Last name is required")
	requireField(fe, "address", info.Address, "Address is required")
	requireField(fe, "city", info.City, "City is required")
	requireField(fe, "postalCode", info.PostalCode, "Postal code is required")
	requireField(fe, "phone", info.Phone, "Phone number is required")
	if strings.TrimSpace(info.Email) == "" {
		fe["email"] = "Email is required"
	} else if !emailPattern.MatchString(info.Email) {
		fe["email"] = "Email is invalid"
	}
	if len(fe) > 0 {
		return fe
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("stage shipping info: %w", err)
	}
	f.session.Set(ShippingKey, string(data))
	return nil
}

// StagedShipping returns the staged shipping data, if any.
func (f *Flow) StagedShipping() (ShippingInfo, bool) {
	raw, ok := f.session.Get(ShippingKey)
	if !ok || raw == "" {
		return ShippingInfo{}, false
	}
	var info ShippingInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return ShippingInfo{}, false
	}
	return info, true
}

// EnterPayment guards the payment page: empty cart bounces to the cart,
// missing staged shipping bounces to shipping.
func (f *Flow) EnterPayment() error {
	if f.cart.ItemCount() == 0 {
		return ErrEmptyCart
	}
	if _, ok := f.StagedShipping(); !ok {
		return ErrNoShipping
	}
	return nil
}

// SubmitPayment validates the card form and, on success, simulates the
// purchase: the cart and staged shipping are cleared and the flow
// terminates at Complete. No payment gateway is involved.
func (f *Flow) SubmitPayment(info PaymentInfo) (Step, error) {
	if err := f.EnterPayment(); err != nil {
		return f.Step(), err
	}

	if fe := validatePayment(info, f.now()); len(fe) > 0 {
		return StepPayment, fe
	}

	f.cart.Clear()
	f.session.Remove(ShippingKey)
	return StepComplete, nil
}

func validatePayment(info PaymentInfo, now time.Time) FieldErrors {
	fe := FieldErrors{}

	digits := strings.ReplaceAll(info.CardNumber, " ", "")
	switch {
	case digits == "":
		fe["cardNumber"] = "Card number is required"
	case !isDigits(digits) || len(digits) != 16:
		fe["cardNumber"] = "Card number must be 16 digits"
	}

	if strings.TrimSpace(info.CardName) == "" {
		fe["cardName"] = "Name on card is required"
	}

	switch {
	case info.ExpiryDate == "":
		fe["expiryDate"] = "Expiry date is required"
	case !validExpiry(info.ExpiryDate, now):
		fe["expiryDate"] = "Expiry date must be in the future (MM/YY)"
	}

	switch {
	case info.CVV == "":
		fe["cvv"] = "CVV is required"
	case !isDigits(info.CVV) || len(info.CVV) < 3 || len(info.CVV) > 4:
		fe["cvv"] = "CVV must be 3 or 4 digits"
	}

	return fe
}

// validExpiry accepts MM/YY at or after the current month.
func validExpiry(s string, now time.Time) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	year += 2000

	if year > now.Year() {
		return true
	}
	return year == now.Year() && month >= int(now.Month())
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func requireField(fe FieldErrors, name, value, msg string) {
	if strings.TrimSpace(value) == "" {
		fe[name] = msg
	}
}
