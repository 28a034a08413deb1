package verification_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/storage/memory"
	"github.com/ballotworks/electoral-api/internal/verification"
)

var testDOB = time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)

func newIdentityFixture() (*memory.Store, *verification.IdentityService) {
	store := memory.NewStore()
	store.SeedAadhar(&verification.AadharRecord{
		AadharNumber: "123456789012",
		FullName:     "Asha Kumari",
		DateOfBirth:  testDOB,
		IsValid:      true,
	})
	store.SeedAadhar(&verification.AadharRecord{
		AadharNumber: "999999999999",
		FullName:     "Revoked Entry",
		DateOfBirth:  testDOB,
		IsValid:      false,
	})
	store.SeedVoterID(&verification.VoterIDRecord{
		VoterIDNumber: "ABC1234567",
		FullName:      "Asha Kumari",
		DateOfBirth:   testDOB,
		IsValid:       true,
	})

	return store, verification.NewIdentityService(store.Registry())
}

func TestVerifyVoterAadharExactMatch(t *testing.T) {
	_, svc := newIdentityFixture()

	ok, err := svc.VerifyVoter(context.Background(), verification.ProofAadhar,
		"123456789012", "Asha Kumari", testDOB)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyVoterVoterIDExactMatch(t *testing.T) {
	_, svc := newIdentityFixture()

	ok, err := svc.VerifyVoter(context.Background(), verification.ProofVoterID,
		"ABC1234567", "Asha Kumari", testDOB)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyVoterNearMissFails(t *testing.T) {
	_, svc := newIdentityFixture()
	ctx := context.Background()

	// All three fields must match the registry row exactly
	cases := []struct {
		name   string
		number string
		person string
		dob    time.Time
	}{
		{"wrong number", "123456789013", "Asha Kumari", testDOB},
		{"wrong name", "123456789012", "Asha K", testDOB},
		{"wrong date of birth", "123456789012", "Asha Kumari", testDOB.AddDate(0, 0, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.VerifyVoter(ctx, verification.ProofAadhar, tc.number, tc.person, tc.dob)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyVoterInvalidatedRecordFails(t *testing.T) {
	_, svc := newIdentityFixture()

	ok, err := svc.VerifyVoter(context.Background(), verification.ProofAadhar,
		"999999999999", "Revoked Entry", testDOB)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyVoterUnsupportedProofType(t *testing.T) {
	_, svc := newIdentityFixture()

	_, err := svc.VerifyVoter(context.Background(), verification.IDProofType("PASSPORT"),
		"X1234567", "Asha Kumari", testDOB)
	assert.Error(t, err)
}

func newFaceMatchClient(url string) *verification.FaceMatchClient {
	cfg := &config.Config{}
	cfg.FaceMatch.URL = url
	cfg.FaceMatch.TimeoutSeconds = 2
	return verification.NewFaceMatchClient(cfg)
}

func TestFaceMatchPositiveVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"match": true}`))
	}))
	defer srv.Close()

	matched, err := newFaceMatchClient(srv.URL).Match(context.Background(), "voters/ref", "captured")
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestFaceMatchNegativeVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"match": false}`))
	}))
	defer srv.Close()

	matched, err := newFaceMatchClient(srv.URL).Match(context.Background(), "voters/ref", "captured")
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestFaceMatchCollaboratorErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newFaceMatchClient(srv.URL).Match(context.Background(), "voters/ref", "captured")
		assert.Error(t, err)
	})

	t.Run("error in body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"match": false, "error": "no face detected"}`))
		}))
		defer srv.Close()

		_, err := newFaceMatchClient(srv.URL).Match(context.Background(), "voters/ref", "captured")
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := newFaceMatchClient(srv.URL).Match(context.Background(), "voters/ref", "captured")
		assert.Error(t, err)
	})
}

func TestFaceMatchRequiresImages(t *testing.T) {
	client := newFaceMatchClient("http://localhost:0")

	_, err := client.Match(context.Background(), "", "captured")
	assert.Error(t, err)

	_, err = client.Match(context.Background(), "voters/ref", "")
	assert.Error(t, err)
}
