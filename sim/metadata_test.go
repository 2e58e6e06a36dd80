package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadataStream_SingleApplication(t *testing.T) {
	apps := mustParseApps(t, "S(start)0;A(start)0;P(run)5;A(end)0;S(end)0.")

	require.Len(t, apps, 1)
	assert.Equal(t, Application{{Code: CodeProcessor, Descriptor: "run", Cycles: 5}}, apps[0])
}

func TestParseMetadataStream_MultipleApplicationsKeepOrder(t *testing.T) {
	stream := "S(start)0;" +
		"A(start)0;P(run)5;I(hard drive)10;A(end)0;" +
		"A(start)0;O(monitor)4;M(allocate)2;A(end)0;" +
		"S(end)0."
	apps := mustParseApps(t, stream)

	require.Len(t, apps, 2)
	assert.Equal(t, Application{
		{Code: CodeProcessor, Descriptor: "run", Cycles: 5},
		{Code: CodeInput, Descriptor: "hard drive", Cycles: 10},
	}, apps[0])
	assert.Equal(t, Application{
		{Code: CodeOutput, Descriptor: "monitor", Cycles: 4},
		{Code: CodeMemory, Descriptor: "allocate", Cycles: 2},
	}, apps[1])
}

func TestParseMetadataStream_EmptyApplication(t *testing.T) {
	apps := mustParseApps(t, "S(start)0;A(start)0;A(end)0;S(end)0.")
	require.Len(t, apps, 1)
	assert.Empty(t, apps[0])
}

func TestParseMetadataStream_TokenWhitespaceTolerated(t *testing.T) {
	apps := mustParseApps(t, "S(start)0; A(start)0;  P(run)5 ;A(end)0;S(end)0.")
	require.Len(t, apps, 1)
	assert.Equal(t, int64(5), apps[0][0].Cycles)
}

func TestParseMetadataStream_MissingPeriod(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;A(start)0;A(end)0;S(end)0")
	requireSimError(t, err, ErrMetadataSyntax)
}

func TestParseMetadataStream_UnparsableEvent(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;A(start)0;Prun5;A(end)0;S(end)0.")
	requireSimError(t, err, ErrMetadataSyntax)
}

func TestParseMetadataStream_InvalidDescriptor(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;A(start)0;P(jog)5;A(end)0;S(end)0.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadataStream_WorkOutsideApplication(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;P(run)5;S(end)0.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadataStream_ApplicationWithoutOS(t *testing.T) {
	_, err := ParseMetadataStream("A(start)0;A(end)0;S(start)0;S(end)0.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadataStream_NestedApplication(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;A(start)0;A(start)0;A(end)0;S(end)0.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadataStream_DoubleOSStart(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;S(start)0;S(end)0.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadataStream_EndWithoutApplication(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;A(end)0;S(end)0.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadataStream_UnterminatedApplication(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;A(start)0;P(run)5.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadataStream_UnterminatedOS(t *testing.T) {
	_, err := ParseMetadataStream("S(start)0;A(start)0;A(end)0.")
	requireSimError(t, err, ErrMetadataSemantic)
}

func TestParseMetadata_FileWithMultilineBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.mdf")
	content := metadataHeader + "\n" +
		"S(start)0;A(start)0;P(run)5;\n" +
		"I(keyboard)10;A(end)0;\n" +
		"S(end)0.\n" +
		metadataFooter + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	apps, err := ParseMetadata(path)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Len(t, apps[0], 2)
}

func TestParseMetadata_MissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.mdf")
	require.NoError(t, os.WriteFile(path, []byte("S(start)0;S(end)0.\n"+metadataFooter+"\n"), 0o644))
	_, err := ParseMetadata(path)
	requireSimError(t, err, ErrMetadataSyntax)
}

func TestParseMetadata_MissingFooter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.mdf")
	require.NoError(t, os.WriteFile(path, []byte(metadataHeader+"\nS(start)0;S(end)0.\n"), 0o644))
	_, err := ParseMetadata(path)
	requireSimError(t, err, ErrMetadataSyntax)
}

func TestParseMetadata_MissingFile(t *testing.T) {
	_, err := ParseMetadata(filepath.Join(t.TempDir(), "missing.mdf"))
	requireSimError(t, err, ErrConfigIO)
}
