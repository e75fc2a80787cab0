package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInferTags(t *testing.T) {
	t.Run("meta keywords come first", func(t *testing.T) {
		got := InferTags([]string{"économie", "HCP"}, "Titre neutre", "", "texte neutre")
		require.Equal(t, []string{"économie", "HCP"}, got)
	})

	t.Run("vocabulary scan", func(t *testing.T) {
		got := InferTags(nil,
			"Maroc: croissance 2% au T3",
			"",
			"La Bourse de Casablanca salue les chiffres du PIB. Le MASI gagne 0,4%.")
		require.Contains(t, got, "Maroc")
		require.Contains(t, got, "croissance")
		require.Contains(t, got, "bourse")
		require.Contains(t, got, "Casablanca")
		require.Contains(t, got, "MASI")
	})

	t.Run("tickers matched as whole words in any case", func(t *testing.T) {
		got := InferTags(nil, "IAM publie ses résultats", "", "Le titre atw progresse aussi.")
		require.Contains(t, got, "IAM")
		require.Contains(t, got, "ATW")
	})

	t.Run("lowercase french words do not trigger ambiguous tickers", func(t *testing.T) {
		got := InferTags(nil, "", "", "les exportations de gaz naturel augmentent")
		require.NotContains(t, got, "LES")
		require.NotContains(t, got, "GAZ")
	})

	t.Run("uppercase ambiguous tickers still match", func(t *testing.T) {
		got := InferTags(nil, "", "", "Le cours de GAZ clôture en hausse.")
		require.Contains(t, got, "GAZ")
	})

	t.Run("deduplicates union case-insensitively", func(t *testing.T) {
		got := InferTags([]string{"masi"}, "Le MASI en hausse", "", "")
		require.Equal(t, []string{"masi"}, got)
	})

	t.Run("no matches yields empty", func(t *testing.T) {
		require.Empty(t, InferTags(nil, "Météo du jour", "", "Il fera beau demain sur tout le littoral."))
	})
}
