package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costeo/auth"
	"costeo/model"
	"costeo/utils"
)

func TestUserCreate_Rules(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.db, newTokenManager(), 0)

	staff, err := users.Create(t.Context(), f.manager, UserInput{
		Email: " Cocina@Hotel.com ", FullName: "Cocina", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cocina@hotel.com", staff.Email)
	assert.Equal(t, model.RoleStaff, staff.Role)
	require.NotNil(t, staff.HotelID)
	assert.Equal(t, f.hotel.ID, *staff.HotelID)
	assert.NotEqual(t, "secret1", staff.Password)

	_, err = users.Create(t.Context(), f.manager, UserInput{Email: "root@hotel.com", Password: "secret1", Role: "admin"})
	assert.ErrorIs(t, err, ErrForbidden, "managers cannot create admins")

	_, err = users.Create(t.Context(), f.manager, UserInput{Email: "x@hotel.com", Password: "secret1", HotelID: &f.other.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = users.Create(t.Context(), f.manager, UserInput{Email: "cocina@hotel.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrConflict)

	var verr *ValidationError
	_, err = users.Create(t.Context(), f.manager, UserInput{Email: "short@hotel.com", Password: "123"})
	assert.ErrorAs(t, err, &verr)
	_, err = users.Create(t.Context(), f.manager, UserInput{Email: "bad@hotel.com", Password: "secret1", Role: "chef"})
	assert.ErrorAs(t, err, &verr)

	admin, err := users.Create(t.Context(), adminScope, UserInput{Email: "boss@costeo.local", Password: "secret1", Role: "admin", HotelID: &f.hotel.ID})
	require.NoError(t, err)
	assert.Nil(t, admin.HotelID, "admins are not tied to a hotel")

	_, err = users.Create(t.Context(), adminScope, UserInput{Email: "nohotel@costeo.local", Password: "secret1", Role: "manager"})
	assert.ErrorAs(t, err, &verr)
}

func TestUserUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.db, newTokenManager(), 0)
	u, err := users.Create(t.Context(), f.manager, UserInput{Email: "a@hotel.com", Password: "secret1"})
	require.NoError(t, err)
	admin, err := users.Create(t.Context(), adminScope, UserInput{Email: "boss@costeo.local", Password: "secret1", Role: "admin"})
	require.NoError(t, err)

	u, err = users.Update(t.Context(), f.manager, u.ID, UserInput{Role: "manager", Password: "newpass1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, u.Role)
	assert.NoError(t, auth.CheckPassword(u.Password, "newpass1"))

	_, err = users.Update(t.Context(), f.manager, u.ID, UserInput{Role: "admin"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = users.Update(t.Context(), f.manager, admin.ID, UserInput{FullName: "x"})
	assert.ErrorIs(t, err, ErrNotFound, "admins are outside the manager's hotel")

	_, err = users.Get(t.Context(), f.outsider, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var verr *ValidationError
	assert.ErrorAs(t, users.Delete(t.Context(), Scope{UserID: u.ID, Role: model.RoleManager, HotelID: f.hotel.ID}, u.ID), &verr)

	require.NoError(t, users.Delete(t.Context(), f.manager, u.ID))
	_, err = users.Get(t.Context(), f.manager, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginRefreshMe(t *testing.T) {
	f := newFixture(t)
	tm := newTokenManager()
	users := NewUserService(f.db, tm, 15*time.Minute)
	created, err := users.Create(t.Context(), f.manager, UserInput{Email: "chef@hotel.com", Password: "secret1", Role: "staff"})
	require.NoError(t, err)

	_, err = users.Login(t.Context(), "chef@hotel.com", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = users.Login(t.Context(), "nobody@hotel.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	res, err := users.Login(t.Context(), "CHEF@hotel.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(900), res.ExpiresIn)

	claims, err := tm.ParseAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, f.hotel.ID, claims.HotelID)

	refreshed, err := users.Refresh(t.Context(), res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = users.Refresh(t.Context(), res.AccessToken)
	assert.ErrorIs(t, err, utils.ErrWrongTokenType)

	me, err := users.Me(t.Context(), Scope{UserID: created.ID, Role: model.RoleStaff, HotelID: f.hotel.ID})
	require.NoError(t, err)
	require.NotNil(t, me.Hotel)
	assert.Equal(t, "Hotel Uno", me.Hotel.Name)

	_, err = users.SetActive(t.Context(), f.manager, created.ID, false)
	require.NoError(t, err)
	_, err = users.Login(t.Context(), "chef@hotel.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = users.Refresh(t.Context(), res.RefreshToken)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}
