package hostbridge

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

type point struct {
	X      int
	Y      int
	hidden string
	Label  string `mistql:"name"`
	Secret string `mistql:"-"`
}

func TestIngestPrimitives(t *testing.T) {
	assert.Nil(t, Ingest(nil))
	assert.Equal(t, float64(5), Ingest(5))
	assert.Equal(t, float64(5), Ingest(uint8(5)))
	assert.Equal(t, "hi", Ingest("hi"))
	assert.Equal(t, true, Ingest(true))
}

func TestIngestStructHonorsTags(t *testing.T) {
	p := point{X: 1, Y: 2, hidden: "nope", Label: "a", Secret: "shh"}
	obj := Ingest(p).(value.Object)
	assert.Equal(t, float64(1), obj["X"])
	assert.Equal(t, float64(2), obj["Y"])
	assert.Equal(t, "a", obj["name"])
	_, hasHidden := obj["hidden"]
	assert.False(t, hasHidden)
	_, hasSecret := obj["Secret"]
	assert.False(t, hasSecret)
}

func TestIngestTimeAndUUID(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, ts.Format(time.RFC3339Nano), Ingest(ts))

	id := uuid.New()
	assert.Equal(t, id.String(), Ingest(id))
}

func TestIngestSliceAndMap(t *testing.T) {
	arr := Ingest([]int{1, 2, 3}).([]value.Value)
	assert.Equal(t, []value.Value{float64(1), float64(2), float64(3)}, arr)

	m := Ingest(map[string]int{"a": 1}).(value.Object)
	assert.Equal(t, float64(1), m["a"])
}

func TestIngestNilPointerAndSlice(t *testing.T) {
	var p *point
	assert.Nil(t, Ingest(p))

	var s []int
	assert.Nil(t, Ingest(s))
}

func TestEgressRoundtrip(t *testing.T) {
	v := value.Object{"a": []value.Value{float64(1), "x"}}
	out := Egress(v).(map[string]interface{})
	arr := out["a"].([]interface{})
	assert.Equal(t, float64(1), arr[0])
	assert.Equal(t, "x", arr[1])
}
