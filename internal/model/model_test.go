package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketByID(t *testing.T) {
	e := &Event{Tickets: []TicketOption{
		{ID: "t1", Name: "عادی"},
		{ID: "t2", Name: "حامی"},
	}}

	ticket := e.TicketByID("t2")
	assert.NotNil(t, ticket)
	assert.Equal(t, "حامی", ticket.Name)
	assert.Nil(t, e.TicketByID("t3"))
}

func TestCityValidation(t *testing.T) {
	assert.True(t, CityUnset.Valid())
	assert.True(t, City("tehran").Valid())
	assert.False(t, City("gotham").Valid())
	assert.Equal(t, "تهران", City("tehran").Label())
}

func TestCategoryValidation(t *testing.T) {
	assert.True(t, CategoryOther.Valid())
	assert.True(t, Category("tech").Valid())
	assert.False(t, Category("").Valid())
	assert.Equal(t, "سایر", CategoryOther.Label())
}

func TestRegistrationStatusValidation(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, RegistrationStatus("maybe").Valid())
}

func TestAttendeeFullName(t *testing.T) {
	info := AttendeeInfo{FirstName: "Ali", LastName: "Rezai"}
	assert.Equal(t, "Ali Rezai", info.FullName())
}
