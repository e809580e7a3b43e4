package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sku-mapper/internal/mapping/model"
)

func TestNormalizeTrimAndUpper(t *testing.T) {
	got, err := Normalize("  sku001 \t", model.Options{})
	require.NoError(t, err)
	require.Equal(t, "SKU001", got)
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := Normalize(raw, model.Options{})
		require.ErrorIs(t, err, ErrEmptyInput, "raw=%q", raw)
	}
}

func TestNormalizePunctOnly(t *testing.T) {
	_, err := Normalize("---", model.Options{StripPunct: true})
	require.ErrorIs(t, err, ErrEmptyInput)

	// без StripPunct пунктуация — легальная часть ключа
	got, err := Normalize("---", model.Options{})
	require.NoError(t, err)
	require.Equal(t, "---", got)
}

func TestNormalizeOptions(t *testing.T) {
	got, err := Normalize("sku - 001", model.Options{StripPunct: true})
	require.NoError(t, err)
	require.Equal(t, "SKU 001", got)

	got, err = Normalize("a   b\tc", model.Options{CollapseSpaces: true})
	require.NoError(t, err)
	require.Equal(t, "A B C", got)
}

func TestNormalizeIdempotent(t *testing.T) {
	opts := []model.Options{
		{},
		{CollapseSpaces: true},
		{StripPunct: true},
		{StripPunct: true, CollapseSpaces: true},
	}
	inputs := []string{" sku001 ", "Ab-Cd_99", "x  y  z", "привет мир", "SKU/001.A"}
	for _, opt := range opts {
		for _, in := range inputs {
			once, err := Normalize(in, opt)
			require.NoError(t, err)
			twice, err := Normalize(once, opt)
			require.NoError(t, err)
			require.Equal(t, once, twice, "opt=%+v in=%q", opt, in)
		}
	}
}

func TestNormalizeASCIIOnlyCasing(t *testing.T) {
	// не-ASCII буквы не трогаем: никакой locale-зависимой капитализации
	got, err := Normalize("straße-01", model.Options{})
	require.NoError(t, err)
	require.Equal(t, "STRAßE-01", got)
}
