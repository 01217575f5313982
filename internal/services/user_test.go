package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewaste-recycle-backend/internal/models"
)

func TestRegisterAndValidateToken(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, "Asha", "asha@example.com", models.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, user.Token)

	userID, role, err := svc.ValidateJWT(user.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleUser, role)
}

func TestRegister_OrganizationRoleClaim(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), "test-secret")

	org, err := svc.Register(context.Background(), "City Recyclers", "ops@cityrecyclers.example", models.RoleOrganization)
	require.NoError(t, err)

	_, role, err := svc.ValidateJWT(org.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganization, role)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "asha@example.com", models.RoleUser)
	assert.Error(t, err)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), "test-secret")

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", models.Role("admin"))
	assert.Error(t, err)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), "test-secret")
	other := NewUserService(newFakeUserStore(), "other-secret")

	user, err := svc.Register(context.Background(), "Asha", "asha@example.com", models.RoleUser)
	require.NoError(t, err)

	_, _, err = other.ValidateJWT(user.Token)
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), "test-secret")

	_, _, err := svc.ValidateJWT("not-a-token")
	assert.Error(t, err)
}
