package board

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/mkehrer/monopoly-server/app/models"
)

//go:embed properties.json
var propertiesJSON []byte

// Size is the number of board fields.
const Size = 40

var fields []models.Field

func init() {
	if err := json.Unmarshal(propertiesJSON, &fields); err != nil {
		panic(fmt.Sprintf("board: bad properties.json: %v", err))
	}
	if len(fields) != Size {
		panic(fmt.Sprintf("board: expected %d fields, got %d", Size, len(fields)))
	}
	for i, f := range fields {
		if f.Position != i {
			panic(fmt.Sprintf("board: field %d has position %d", i, f.Position))
		}
	}
}

// Fields returns a copy of the full catalog in position order.
func Fields() []models.Field {
	out := make([]models.Field, Size)
	copy(out, fields)
	return out
}

// FieldAt looks up a field by position. Positions are 0..39.
func FieldAt(pos int) (models.Field, error) {
	if pos < 0 || pos >= Size {
		return models.Field{}, fmt.Errorf("board: position %d out of range", pos)
	}
	return fields[pos], nil
}

// ColorGroup returns all property fields of the given color group.
func ColorGroup(color string) []models.Field {
	var out []models.Field
	for _, f := range fields {
		if f.Type == models.FieldProperty && f.Color == color {
			out = append(out, f)
		}
	}
	return out
}
