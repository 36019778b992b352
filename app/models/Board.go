package models

// FieldType classifies the 40 board fields.
type FieldType string

const (
	FieldStart       FieldType = "start"
	FieldProperty    FieldType = "property"
	FieldRailroad    FieldType = "railroad"
	FieldUtility     FieldType = "utility"
	FieldTax         FieldType = "tax"
	FieldChance      FieldType = "chance"
	FieldCommunity   FieldType = "community"
	FieldJail        FieldType = "jail"
	FieldFreeParking FieldType = "free-parking"
	FieldGoToJail    FieldType = "go-to-jail"
)

type Field struct {
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Color     string    `json:"color"`
	Price     int       `json:"price"`
	Rent      []int     `json:"rent"`
	Mortgage  int       `json:"mortgage"`
	HouseCost int       `json:"houseCost"`
}

// Purchasable reports whether the field can be owned by a player.
func (f Field) Purchasable() bool {
	switch f.Type {
	case FieldProperty, FieldRailroad, FieldUtility:
		return true
	}
	return false
}
