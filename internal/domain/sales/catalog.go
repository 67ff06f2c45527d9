package sales

import "fmt"

type TicketType string

const (
	TicketStudent   TicketType = "student"
	TicketRegular   TicketType = "regular"
	TicketVIPSingle TicketType = "vip-single"
	TicketVIPCouple TicketType = "vip-couple"
	TicketTable     TicketType = "table"
)

const DefaultCurrency = "NGN"

// Tier describes one ticket type on sale. Prices are whole naira.
type Tier struct {
	Type           TicketType `json:"id"`
	Name           string     `json:"name"`
	Price          int64      `json:"price"`
	Description    string     `json:"description"`
	MaxPerPurchase int        `json:"maxPerPurchase"`
	Capacity       int        `json:"capacity"`
	Features       []string   `json:"features"`
}

var tiers = []Tier{
	{
		Type:           TicketRegular,
		Name:           "Regular",
		Price:          5000,
		Description:    "Standard seating with great view of the stage",
		MaxPerPurchase: 5,
		Capacity:       150,
		Features:       []string{"General admission seating", "Access to main auditorium", "Concert program included"},
	},
	{
		Type:           TicketStudent,
		Name:           "Student",
		Price:          2000,
		Description:    "Discounted price for students with valid ID",
		MaxPerPurchase: 2,
		Capacity:       50,
		Features:       []string{"Valid student ID required", "General admission seating"},
	},
	{
		Type:           TicketVIPSingle,
		Name:           "VIP Single",
		Price:          25000,
		Description:    "Premium seating with exclusive perks",
		MaxPerPurchase: 2,
		Capacity:       30,
		Features:       []string{"Front row premium seating", "Complimentary refreshments", "VIP lounge access"},
	},
	{
		Type:           TicketVIPCouple,
		Name:           "VIP Couple",
		Price:          50000,
		Description:    "Two premium seats together",
		MaxPerPurchase: 1,
		Capacity:       20,
		Features:       []string{"Two premium seats together", "Complimentary champagne", "VIP lounge access"},
	},
	{
		Type:           TicketTable,
		Name:           "Table",
		Price:          200000,
		Description:    "Reserved table for groups",
		MaxPerPurchase: 1,
		Capacity:       10,
		Features:       []string{"Reserved table for up to 6 people", "Dedicated server", "Best viewing position"},
	},
}

// Catalog returns a copy of all tiers in display order.
func Catalog() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

func TierFor(t TicketType) (Tier, bool) {
	for _, tier := range tiers {
		if tier.Type == t {
			return tier, true
		}
	}
	return Tier{}, false
}

func ParseTicketType(s string) (TicketType, error) {
	if _, ok := TierFor(TicketType(s)); !ok {
		return "", NewValidationError("ticketType", fmt.Sprintf("unknown ticket type %q", s))
	}
	return TicketType(s), nil
}
