package format

import (
	"strings"
	"testing"

	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
	"github.com/mentalsmash/yaml-serde/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupBuiltins(t *testing.T) {
	y, err := Lookup(YAML)
	require.NoError(t, err)
	assert.Equal(t, YAML, y.ID())

	j, err := Lookup(JSON)
	require.NoError(t, err)
	assert.Equal(t, JSON, j.ID())

	_, err = Lookup("msgpack")
	assert.ErrorIs(t, err, merr.ErrFormatNotRegistered)
}

type upperFormat struct{}

func (upperFormat) ID() string { return "upper" }
func (upperFormat) Encode(w wire.Value, _ Options) (string, error) {
	return strings.ToUpper(w.(string)), nil
}
func (upperFormat) Decode(text string, _ Options) (wire.Value, error) {
	return strings.ToLower(text), nil
}

type otherFormat struct{ upperFormat }

func TestRegisterUserFormat(t *testing.T) {
	require.NoError(t, Register("upper", upperFormat{}))
	defer func() {
		_, err := Unregister("upper")
		require.NoError(t, err)
	}()

	f, err := Lookup("upper")
	require.NoError(t, err)
	out, err := f.Encode("abc", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)

	// 同一实现重复登记是空操作。
	assert.NoError(t, Register("upper", upperFormat{}))
	// 换一个实现则冲突。
	err = Register("upper", otherFormat{})
	assert.ErrorIs(t, err, merr.ErrFormatConflict)
}

func TestRegisterReserved(t *testing.T) {
	err := Register(YAML, upperFormat{})
	assert.ErrorIs(t, err, merr.ErrFormatReserved)

	_, err = Unregister(JSON)
	assert.ErrorIs(t, err, merr.ErrFormatReserved)
}

func TestUnregisterMissing(t *testing.T) {
	_, err := Unregister("never-registered")
	assert.ErrorIs(t, err, merr.ErrFormatNotRegistered)
}

func TestFrameStrip(t *testing.T) {
	body := "a: 1\n"
	framed := Frame(body)
	assert.Equal(t, "---\na: 1\n\n...\n", framed)
	assert.Equal(t, body, Strip(framed))
	// 不带标记的文本原样返回。
	assert.Equal(t, body, Strip(body))
}

func TestYAMLEncodeFramed(t *testing.T) {
	w := wire.NewMapping().
		Put("a", 1).
		Put("b", wire.Sequence{1, 2, 3})

	y, err := Lookup(YAML)
	require.NoError(t, err)

	out, err := y.Encode(w, Options{})
	require.NoError(t, err)
	assert.Equal(t, "---\na: 1\nb:\n- 1\n- 2\n- 3\n\n...\n", out)

	partial, err := y.Encode(w, Options{Partial: true})
	require.NoError(t, err)
	assert.Equal(t, "a: 1\nb:\n- 1\n- 2\n- 3\n", partial)
}

func TestYAMLEncodeEmptyMapping(t *testing.T) {
	y, err := Lookup(YAML)
	require.NoError(t, err)

	out, err := y.Encode(wire.NewMapping(), Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.True(t, strings.HasSuffix(out, "...\n"))
}

func TestYAMLSafeModeRejects(t *testing.T) {
	y, err := Lookup(YAML)
	require.NoError(t, err)

	type opaque struct{ N int }
	_, err = y.Encode(opaque{N: 1}, Options{})
	assert.ErrorIs(t, err, merr.ErrCodecUnsupportedType)

	// 非安全模式放行,由编解码器自行处理。
	out, err := y.Encode(opaque{N: 1}, Options{Unsafe: true, Partial: true})
	require.NoError(t, err)
	// 键 n 是 YAML 1.1 布尔字面量,emitter 会加引号。
	assert.Equal(t, "\"n\": 1\n", out)
}

func TestYAMLDecode(t *testing.T) {
	y, err := Lookup(YAML)
	require.NoError(t, err)

	w, err := y.Decode("---\na: 1\nb:\n- 1\n- 2\n- 3\n\n...\n", Options{})
	require.NoError(t, err)

	m, ok := w.(*wire.Mapping)
	require.True(t, ok)
	a, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, a)
	b, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, wire.Sequence{1, 2, 3}, b)
}

func TestYAMLDecodeMalformed(t *testing.T) {
	y, err := Lookup(YAML)
	require.NoError(t, err)

	_, err = y.Decode("a: [unterminated", Options{})
	assert.ErrorIs(t, err, merr.ErrCodecDecode)
}

func TestJSONEncodeCompact(t *testing.T) {
	w := wire.NewMapping().
		Put("a", 1).
		Put("b", wire.Sequence{1, 2, 3})

	j, err := Lookup(JSON)
	require.NoError(t, err)

	out, err := j.Encode(w, Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":[1,2,3]}`, out)
	assert.False(t, strings.Contains(out, "\n"))

	// 紧凑格式没有文档标记,Partial 不改变输出。
	same, err := j.Encode(w, Options{Partial: true})
	require.NoError(t, err)
	assert.Equal(t, out, same)
}

func TestJSONDecodeDelegates(t *testing.T) {
	j, err := Lookup(JSON)
	require.NoError(t, err)

	w, err := j.Decode(`{"a":1,"b":[1,2,3]}`, Options{})
	require.NoError(t, err)

	m, ok := w.(*wire.Mapping)
	require.True(t, ok)
	a, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, a)
}

func TestJSONSafeModeRejects(t *testing.T) {
	j, err := Lookup(JSON)
	require.NoError(t, err)

	_, err = j.Encode(make(chan int), Options{})
	assert.ErrorIs(t, err, merr.ErrCodecUnsupportedType)
}

func TestSetEncodesCanonically(t *testing.T) {
	s := wire.NewSet(3, 1, 2)

	y, err := Lookup(YAML)
	require.NoError(t, err)
	out, err := y.Encode(s, Options{Partial: true})
	require.NoError(t, err)
	assert.Equal(t, "- 1\n- 2\n- 3\n", out)
}
