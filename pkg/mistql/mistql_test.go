package mistql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLiterals(t *testing.T) {
	result, err := Query("1 + 2", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(3), result)
}

func TestQueryContextAndIndex(t *testing.T) {
	data := map[string]interface{}{"events": []interface{}{
		map[string]interface{}{"type": "a"},
		map[string]interface{}{"type": "b"},
	}}
	result, err := Query("events[0].type", data)
	require.NoError(t, err)
	assert.Equal(t, "a", result)
}

func TestQueryPipeline(t *testing.T) {
	data := map[string]interface{}{"events": []interface{}{
		map[string]interface{}{"type": "a"},
		map[string]interface{}{"type": "b"},
		map[string]interface{}{"type": "a"},
	}}
	result, err := Query(`events | filter type == "a" | count`, data)
	require.NoError(t, err)
	assert.Equal(t, float64(2), result)
}

func TestQueryRootEscape(t *testing.T) {
	// Each item carries its own "threshold" field, shadowing the root's. The
	// bare reference picks up the item's own field; "$." rebases past that
	// shadowing frame to recover the root's definition of the same name.
	data := map[string]interface{}{
		"threshold": float64(1),
		"items": []interface{}{
			map[string]interface{}{"threshold": float64(5)},
			map[string]interface{}{"threshold": float64(0)},
		},
	}
	result, err := Query("items | filter threshold > $.threshold", data)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{map[string]interface{}{"threshold": float64(5)}}, result)
}

func TestQueryParseError(t *testing.T) {
	_, err := Query("1 +", nil)
	assert.Error(t, err)
}

func TestQueryRuntimeError(t *testing.T) {
	_, err := Query("undefinedthing", nil)
	assert.Error(t, err)
}

func TestInstanceWithPureExtra(t *testing.T) {
	inst := New(map[string]interface{}{
		"double": PureFunction(func(args []interface{}) (interface{}, error) {
			return args[0].(float64) * 2, nil
		}),
	})
	result, err := inst.Query("double 21", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(42), result)
}

func TestInstanceWithDataExtra(t *testing.T) {
	inst := New(map[string]interface{}{"greeting": "hello"})
	result, err := inst.Query("greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

// The following mirror concrete end-to-end query scenarios.

func TestScenarioMapIncrement(t *testing.T) {
	result, err := Query("@ | map @ + 1", []interface{}{float64(1), float64(2), float64(3)})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(2), float64(3), float64(4)}, result)
}

func TestScenarioGroupbyKeys(t *testing.T) {
	data := map[string]interface{}{
		"events": []interface{}{
			map[string]interface{}{"type": "like", "email": "h@x"},
			map[string]interface{}{"type": "send_message", "email": "f@x"},
			map[string]interface{}{"type": "send_message", "email": "f@x"},
			map[string]interface{}{"type": "send_message", "email": "w@x"},
		},
	}
	result, err := Query(`events | filter type == "send_message" | groupby email | keys`, data)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"f@x", "w@x"}, result)
}

func TestScenarioNegativeSlice(t *testing.T) {
	result, err := Query("[1,2,3,4,5][-3:]", nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(3), float64(4), float64(5)}, result)
}

func TestScenarioGlobalRegexReplace(t *testing.T) {
	result, err := Query(`"hello" | replace (regex "l" "g") "za"`, nil)
	require.NoError(t, err)
	assert.Equal(t, "hezazao", result)
}

func TestScenarioSummarize(t *testing.T) {
	result, err := Query("@ | summarize", []interface{}{float64(1), float64(2), float64(5), float64(10), float64(12)})
	require.NoError(t, err)
	summary := result.(map[string]interface{})
	assert.InDelta(t, 1, summary["min"], 1e-9)
	assert.InDelta(t, 12, summary["max"], 1e-9)
	assert.InDelta(t, 6, summary["mean"], 1e-9)
	assert.InDelta(t, 5, summary["median"], 1e-9)
	assert.InDelta(t, 18.8, summary["variance"], 1e-9)
	assert.InDelta(t, 4.33589667773576, summary["stddev"], 1e-9)
}

func TestScenarioSequence(t *testing.T) {
	data := []interface{}{
		map[string]interface{}{"type": "convert", "data": "one"},
		map[string]interface{}{"type": "chat", "data": "two"},
		map[string]interface{}{"type": "convert", "data": "three"},
		map[string]interface{}{"type": "convert", "data": "four"},
		map[string]interface{}{"type": "chat", "data": "five"},
		map[string]interface{}{"type": "convert", "data": "six"},
	}
	result, err := Query(`@ | sequence type=="chat" type=="convert"`, data)
	require.NoError(t, err)
	seqs := result.([]interface{})
	require.Len(t, seqs, 4)
	dataPairs := make([][2]string, len(seqs))
	for i, s := range seqs {
		pair := s.([]interface{})
		dataPairs[i] = [2]string{
			pair[0].(map[string]interface{})["data"].(string),
			pair[1].(map[string]interface{})["data"].(string),
		}
	}
	assert.Equal(t, [][2]string{
		{"two", "three"}, {"two", "four"}, {"two", "six"}, {"five", "six"},
	}, dataPairs)
}

func TestScenarioDollarEscape(t *testing.T) {
	data := map[string]interface{}{"filter": "hello", "hp": "hp", "lp": "lp"}
	result, err := Query(`[{filter: hp}, {filter: lp}] | $.filter filter == "lp"`, data)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{map[string]interface{}{"filter": "lp"}}, result)
}

func TestScenarioUnicodeIndex(t *testing.T) {
	result, err := Query(`"😊a"[0]`, nil)
	require.NoError(t, err)
	assert.Equal(t, "\U0001F60A", result)
}

func TestIdentityProperty(t *testing.T) {
	data := map[string]interface{}{"a": float64(1), "b": []interface{}{"x"}}
	result, err := Query("@", data)
	require.NoError(t, err)
	assert.Equal(t, data, result)
}

func TestEntriesFromentriesRoundtrip(t *testing.T) {
	data := map[string]interface{}{"a": float64(1), "b": float64(2)}
	result, err := Query("@ | entries | fromentries", data)
	require.NoError(t, err)
	assert.Equal(t, data, result)
}

func TestSplitJoinRoundtrip(t *testing.T) {
	result, err := Query(`join "," (split "," "a,b,c")`, nil)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", result)
}
