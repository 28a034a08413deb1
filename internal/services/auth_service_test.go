package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ballotworks/electoral-api/internal/domain/common"
	"github.com/ballotworks/electoral-api/internal/domain/voter"
	"github.com/ballotworks/electoral-api/internal/services"
	"github.com/ballotworks/electoral-api/internal/storage/memory"
	"github.com/ballotworks/electoral-api/internal/verification"
)

var ashaDOB = time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)

func newAuthFixture() (*memory.Store, *services.AuthService) {
	store := memory.NewStore()
	store.SeedAadhar(&verification.AadharRecord{
		AadharNumber: "123456789012",
		FullName:     "Asha Kumari",
		DateOfBirth:  ashaDOB,
		IsValid:      true,
	})
	store.SeedVoterID(&verification.VoterIDRecord{
		VoterIDNumber: "ABC1234567",
		FullName:      "Asha Kumari",
		DateOfBirth:   ashaDOB,
		IsValid:       true,
	})

	identity := verification.NewIdentityService(store.Registry())
	return store, services.NewAuthService(store.Voters(), identity)
}

func ashaRequest() services.RegisterRequest {
	return services.RegisterRequest{
		Email:         "asha@example.com",
		Password:      "s3cret-password",
		FullName:      "Asha Kumari",
		DateOfBirth:   ashaDOB,
		City:          "Mumbai",
		State:         "Maharashtra",
		IDProofType:   "AADHAR",
		IDProofNumber: "123456789012",
	}
}

func TestRegisterVerifiedVoter(t *testing.T) {
	_, svc := newAuthFixture()

	vtr, err := svc.Register(context.Background(), ashaRequest())
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", vtr.Email)
	assert.Equal(t, "123456789012", vtr.AadharNumber)
	assert.Empty(t, vtr.VoterIDNumber)
	assert.Equal(t, voter.RoleVoter, vtr.Role)
	assert.True(t, vtr.IsVerified)
	assert.NotNil(t, vtr.VerifiedAt)

	// Password is stored hashed, never in the clear
	assert.NotEqual(t, "s3cret-password", vtr.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(vtr.PasswordHash), []byte("s3cret-password")))
}

func TestRegisterWithVoterIDProof(t *testing.T) {
	_, svc := newAuthFixture()

	req := ashaRequest()
	req.IDProofType = "VOTER_ID"
	req.IDProofNumber = "ABC1234567"

	vtr, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "ABC1234567", vtr.VoterIDNumber)
	assert.Empty(t, vtr.AadharNumber)
}

func TestRegisterUnverifiedIdentityRejected(t *testing.T) {
	store, svc := newAuthFixture()

	req := ashaRequest()
	req.IDProofNumber = "000000000000"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, services.ErrIdentityUnverified)

	// No voter row is written for a failed verification
	_, err = store.Voters().GetByEmail(context.Background(), req.Email)
	assert.Error(t, err)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, ashaRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, ashaRequest())
	assert.ErrorIs(t, err, services.ErrEmailAlreadyInUse)
}

func TestRegisterSameProofTypeDistinctVoters(t *testing.T) {
	// Two voters registering with the same proof type leave the other
	// proof column empty; the empty column must not count as a duplicate.
	store, svc := newAuthFixture()
	ctx := context.Background()

	store.SeedAadhar(&verification.AadharRecord{
		AadharNumber: "987654321098",
		FullName:     "Ravi Menon",
		DateOfBirth:  time.Date(1985, 7, 2, 0, 0, 0, 0, time.UTC),
		IsValid:      true,
	})

	first, err := svc.Register(ctx, ashaRequest())
	require.NoError(t, err)

	second, err := svc.Register(ctx, services.RegisterRequest{
		Email:         "ravi@example.com",
		Password:      "another-s3cret",
		FullName:      "Ravi Menon",
		DateOfBirth:   time.Date(1985, 7, 2, 0, 0, 0, 0, time.UTC),
		City:          "Kochi",
		State:         "Kerala",
		IDProofType:   "AADHAR",
		IDProofNumber: "987654321098",
	})
	require.NoError(t, err)

	assert.Empty(t, first.VoterIDNumber)
	assert.Empty(t, second.VoterIDNumber)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRegisterDuplicateIDProofRejected(t *testing.T) {
	store, svc := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, ashaRequest())
	require.NoError(t, err)

	// Same Aadhar number under a fresh email: the registry check passes
	// (name and date of birth match) but the proof is already claimed.
	req := ashaRequest()
	req.Email = "asha.second@example.com"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, services.ErrIDProofAlreadyInUse)

	_, err = store.Voters().GetByEmail(ctx, req.Email)
	assert.Error(t, err)
}

func TestSetProfileImage(t *testing.T) {
	store, svc := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, ashaRequest())
	require.NoError(t, err)
	assert.Empty(t, registered.ProfileImageKey)

	vtr, err := svc.SetProfileImage(ctx, registered.ID, "voters/asha.jpg")
	require.NoError(t, err)
	assert.Equal(t, "voters/asha.jpg", vtr.ProfileImageKey)

	// The key is persisted, not just set on the returned copy
	reloaded, err := store.Voters().GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "voters/asha.jpg", reloaded.ProfileImageKey)
}

func TestSetProfileImageUnknownVoter(t *testing.T) {
	_, svc := newAuthFixture()

	_, err := svc.SetProfileImage(context.Background(), uuid.New(), "voters/ghost.jpg")
	assert.ErrorIs(t, err, common.ErrVoterNotFound)
}

func TestLogin(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, ashaRequest())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		vtr, err := svc.Login(ctx, "asha@example.com", "s3cret-password")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, vtr.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "asha@example.com", "wrong-password")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "s3cret-password")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})
}
