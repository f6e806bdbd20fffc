package model

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleDoctor))
	assert.True(t, RoleDoctor.AtLeast(RoleDoctor))
	assert.True(t, RoleNurse.AtLeast(RoleStaff))
	assert.False(t, RoleStaff.AtLeast(RoleNurse))
	assert.False(t, RoleNurse.AtLeast(RoleDoctor))
	assert.False(t, Role("JANITOR").AtLeast(RoleStaff))

	levels := []int{}
	for _, r := range Roles() {
		levels = append(levels, r.Level())
	}
	assert.Equal(t, []int{1, 2, 3, 4}, levels)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" doctor ")
	assert.True(t, ok)
	assert.Equal(t, RoleDoctor, r)

	_, ok = ParseRole("surgeon")
	assert.False(t, ok)
}

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, "desc", p.SortOrder)
	assert.Equal(t, 0, p.Offset())

	p = ListParams{Page: 3, Limit: 500, SortOrder: "ASC", Search: "  sharma "}
	p.Normalize()
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, "asc", p.SortOrder)
	assert.Equal(t, "sharma", p.Search)
	assert.Equal(t, 200, p.Offset())
}

func TestListParamsNormalizeClampsHugePage(t *testing.T) {
	p := ListParams{Page: math.MaxInt, Limit: 10}
	p.Normalize()

	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*10, p.Offset())
	assert.Positive(t, p.Offset())
}

func TestComputeBMIAtRangeEdges(t *testing.T) {
	height, weight := 50.0, 300.0
	p := &Patient{Height: &height, Weight: &weight}
	p.ComputeBMI()

	require.NotNil(t, p.BMI)
	assert.Equal(t, 1200.0, *p.BMI)
	// patients.bmi is NUMERIC(6,1).
	assert.Less(t, *p.BMI, 100000.0)

	p.Weight = nil
	p.ComputeBMI()
	assert.Nil(t, p.BMI)
}

func TestRecordFilter(t *testing.T) {
	id := uuid.New()
	f := RecordFilter{PatientID: id.String(), FromDate: "2024-01-01"}

	assert.Equal(t, id, *f.PatientUUID())
	from, to := f.Range()
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Nil(t, to)

	assert.Nil(t, RecordFilter{PatientID: "nope"}.PatientUUID())
}

func TestActorContext(t *testing.T) {
	assert.Nil(t, ActorID(context.Background()))

	id := uuid.New()
	ctx := WithActor(context.Background(), Actor{UserID: id, Role: RoleNurse})
	got, ok := ActorFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, RoleNurse, got.Role)
	assert.Equal(t, id, *ActorID(ctx))
}
