package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	churchID := uint(10)
	token, err := GenerateToken("pastor@igreja.org", 1, "super_admin", &churchID, "Igreja Batista Central")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "pastor@igreja.org", claims.Email)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "super_admin", claims.Role)
	require.NotNil(t, claims.ChurchID)
	assert.Equal(t, churchID, *claims.ChurchID)
	assert.Equal(t, "Igreja Batista Central", claims.ChurchName)
}

func TestGenerateTokenWithoutChurch(t *testing.T) {
	token, err := GenerateToken("user@igreja.org", 2, "member", nil, "")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ChurchID)
	assert.Empty(t, claims.ChurchName)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}
