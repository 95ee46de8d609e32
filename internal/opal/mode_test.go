package opal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"opal.anytrip.au/internal/models"
)

func TestModeForLeg(t *testing.T) {
	tests := []struct {
		name     string
		class    int
		iconID   int
		operator string
		want     Mode
	}{
		{"metro", 2, 0, "X0001", ModeRail},
		{"sydney trains", 1, 0, "X000", ModeRail},
		{"intercity", 1, 0, "X0000", ModeRail},
		{"regional train", 1, 0, "729", ModeNonOpal},
		{"sydney ferries", 9, 0, "SF", ModeFerry},
		{"manly fast ferry", 9, 0, "306", ModeFerry},
		{"stockton ferry charged as bus", 9, 0, "3000", ModeBus},
		{"private ferry", 9, 0, "99", ModeNonOpal},
		{"light rail", 4, 0, "2204", ModeLightRail},
		{"regular bus", 5, 5, "2436", ModeBus},
		{"regular bus alt icon", 5, 15, "2436", ModeBus},
		{"school bus", 5, 23, "2436", ModeNonOpal},
		{"coach", 7, 0, "700", ModeNonOpal},
		{"walking", 99, 0, "", ModeNonOpal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := &models.EfaLeg{
				Transportation: models.EfaTransportation{
					Product:  models.EfaProduct{Class: tt.class, IconID: tt.iconID},
					Operator: models.EfaOperator{ID: tt.operator},
				},
			}
			assert.Equal(t, tt.want, ModeForLeg(leg))
		})
	}
}
