package utils

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	userID := uuid.NewString()
	token, err := GenerateToken(userID, "teacher")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, userID, claims.Subject)
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(uuid.NewString(), "student")
	require.NoError(t, err)

	// Đổi 1 ký tự cuối (phần chữ ký)
	tampered := token[:len(token)-2] + "xx"
	_, err = VerifyToken(tampered)
	assert.Error(t, err)

	// Token rác
	_, err = VerifyToken("khong.phai.jwt")
	assert.Error(t, err)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "secret-a")
	token, err := GenerateToken(uuid.NewString(), "student")
	require.NoError(t, err)

	os.Setenv("JWT_SECRET", "secret-b")
	_, err = VerifyToken(token)
	assert.Error(t, err)
}
