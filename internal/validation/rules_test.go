package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "secret12", false},
		{"Exactly Min Length", "abcdef", false},
		{"Exactly Max Length", strings.Repeat("a", 128), false},
		{"Too Short", "abc12", true},
		{"Too Long", strings.Repeat("a", 129), true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Valid With Hyphen", "test-user", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "user@example.com", false},
		{"Valid Subdomain", "user@mail.example.co.uk", false},
		{"Missing At", "userexample.com", true},
		{"Missing TLD", "user@example", true},
		{"Empty", "", true},
		{"Too Long", strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOverallRating(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		value   float64
		want    float64
		wantErr bool
	}{
		{"Min", 1, 1, false},
		{"Max", 5, 5, false},
		{"Rounds To One Decimal", 4.26, 4.3, false},
		{"Rounds Down", 3.14, 3.1, false},
		{"Below Range", 0.5, 0, true},
		{"Above Range", 5.1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateOverallRating(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestValidateTimeOfDay(t *testing.T) {
	t.Parallel()
	ok := "18:30"
	midnight := "00:00"
	bad := "25:99"
	noColon := "1830"

	assert.NoError(t, ValidateTimeOfDay(nil))
	assert.NoError(t, ValidateTimeOfDay(&ok))
	assert.NoError(t, ValidateTimeOfDay(&midnight))
	assert.Error(t, ValidateTimeOfDay(&bad))
	assert.Error(t, ValidateTimeOfDay(&noColon))
}

func TestValidateCrowdLevel(t *testing.T) {
	t.Parallel()
	three := 3
	zero := 0
	six := 6

	assert.NoError(t, ValidateCrowdLevel(nil))
	assert.NoError(t, ValidateCrowdLevel(&three))
	assert.Error(t, ValidateCrowdLevel(&zero))
	assert.Error(t, ValidateCrowdLevel(&six))
}
