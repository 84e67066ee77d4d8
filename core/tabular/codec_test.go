package tabular

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Basic(t *testing.T) {
	table := Decode("name,archived\nfoo,true\nbar,false\n")

	assert.Equal(t, []string{"name", "archived"}, table.Header)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "foo", table.Records[0].Name())
	assert.True(t, table.Records[0].Archived())
	assert.Equal(t, "bar", table.Records[1].Name())
	assert.False(t, table.Records[1].Archived())
}

func TestDecode_Empty(t *testing.T) {
	table := Decode("")
	assert.Nil(t, table.Header)
	assert.Equal(t, 0, table.Len())
}

func TestDecode_HeaderOnly(t *testing.T) {
	table := Decode("name,archived\n")
	assert.Equal(t, []string{"name", "archived"}, table.Header)
	assert.Equal(t, 0, table.Len())
}

func TestDecode_QuotedCell(t *testing.T) {
	t.Run("embedded separator newline and escaped quotes", func(t *testing.T) {
		table := Decode("v\n\"a,b\n\"\"c\"\"\"\n")
		require.Len(t, table.Records, 1)
		assert.Equal(t, "a,b\n\"c\"", table.Records[0].Get("v"))
	})

	t.Run("trailing escaped quote", func(t *testing.T) {
		table := Decode("v\n\"a,b\nc\"\"\"\n")
		require.Len(t, table.Records, 1)
		assert.Equal(t, "a,b\nc\"", table.Records[0].Get("v"))
	})
}

func TestDecode_LineBreaks(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "LF", text: "name,x\na,1\nb,2\n"},
		{name: "CRLF", text: "name,x\r\na,1\r\nb,2\r\n"},
		{name: "CR", text: "name,x\ra,1\rb,2\r"},
		{name: "no trailing break", text: "name,x\na,1\nb,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Decode(tt.text)
			require.Len(t, table.Records, 2)
			assert.Equal(t, "a", table.Records[0].Name())
			assert.Equal(t, "2", table.Records[1].Get("x"))
		})
	}
}

func TestDecode_RaggedRows(t *testing.T) {
	table := Decode("name,a,b\nshort\nlong,1,2,3,4\n")
	require.Len(t, table.Records, 2)

	short := table.Records[0]
	assert.Equal(t, "short", short.Name())
	assert.Equal(t, "", short.Get("a"))
	assert.Equal(t, "", short.Get("b"))
	_, ok := short["b"]
	assert.True(t, ok, "missing trailing cells decode to empty string")

	long := table.Records[1]
	assert.Len(t, long, 3)
	assert.Equal(t, "2", long.Get("b"))
}

func TestDecode_MalformedQuoting(t *testing.T) {
	t.Run("unterminated quote closes at EOF", func(t *testing.T) {
		table := Decode("name\n\"open,still open\nmore")
		require.Len(t, table.Records, 1)
		assert.Equal(t, "open,still open\nmore", table.Records[0].Name())
	})

	t.Run("stray quote toggles mode", func(t *testing.T) {
		table := Decode("name,x\nab\"c,d\"e,f\n")
		require.Len(t, table.Records, 1)
		assert.Equal(t, "abc,de", table.Records[0].Name())
		assert.Equal(t, "f", table.Records[0].Get("x"))
	})
}

func TestDecode_TrailingSeparator(t *testing.T) {
	table := Decode("name,x\nfoo,\n")
	require.Len(t, table.Records, 1)
	assert.Equal(t, "", table.Records[0].Get("x"))
}

func TestEncode_Quoting(t *testing.T) {
	header := []string{"name", "note"}
	records := []Record{
		{"name": "plain", "note": "simple"},
		{"name": "comma", "note": "a,b"},
		{"name": "quote", "note": `say "hi"`},
		{"name": "newline", "note": "line1\nline2"},
		{"name": "absent"},
	}

	out := Encode(header, records)

	expected := "name,note\n" +
		"plain,simple\n" +
		"comma,\"a,b\"\n" +
		"quote,\"say \"\"hi\"\"\"\n" +
		"newline,\"line1\nline2\"\n" +
		"absent,\n"
	assert.Equal(t, expected, out)
}

func TestEncode_HeaderOnly(t *testing.T) {
	assert.Equal(t, "a,b\n", Encode([]string{"a", "b"}, nil))
}

func TestRoundTrip(t *testing.T) {
	header := []string{"name", "path", "note"}
	records := []Record{
		{"name": "alpha", "path": "group/alpha", "note": ""},
		{"name": "beta, the second", "path": "group/\"beta\"", "note": "multi\nline\r\nvalue"},
		{"name": "\"\"", "path": ",", "note": "\r"},
		{"name": "trailing space ", "path": " leading", "note": "tab\there"},
	}

	decoded := Decode(Encode(header, records))

	assert.Equal(t, header, decoded.Header)
	require.Len(t, decoded.Records, len(records))
	for i, rec := range records {
		for _, field := range header {
			assert.Equal(t, rec.Get(field), decoded.Records[i].Get(field), "record %d field %s", i, field)
		}
	}
}

type failingIO struct{}

func (failingIO) Read([]byte) (int, error)  { return 0, errors.New("disk gone") }
func (failingIO) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestDecodeReader(t *testing.T) {
	table, err := DecodeReader(strings.NewReader("name,archived\r\nalpha,true\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "archived"}, table.Header)
	require.Len(t, table.Records, 1)
	assert.True(t, table.Records[0].Archived())

	_, err = DecodeReader(failingIO{})
	assert.ErrorContains(t, err, "disk gone")
}

func TestEncodeWriter(t *testing.T) {
	var b strings.Builder
	require.NoError(t, EncodeWriter(&b, []string{"name"}, []Record{{"name": "a,b"}}))
	assert.Equal(t, "name\n\"a,b\"\n", b.String())

	err := EncodeWriter(failingIO{}, []string{"name"}, nil)
	assert.ErrorContains(t, err, "failed to write table")
}

func TestRecord_Accessors(t *testing.T) {
	rec := Record{"name": " Foo ", "archived": "TRUE", "blank": "  "}

	assert.Equal(t, " Foo ", rec.Name())
	assert.True(t, rec.Archived())
	assert.True(t, rec.Has("name"))
	assert.False(t, rec.Has("blank"))
	assert.False(t, rec.Has("missing"))

	clone := rec.Clone()
	clone.Set("name", "bar")
	assert.Equal(t, " Foo ", rec.Name())
}
