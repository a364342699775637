package cmd

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/vfdt/pkg/log"
	"github.com/YuminosukeSato/vfdt/sklearn/tree"
)

// writeStream は特徴量0でクラスが決まるCSVを書き出す
func writeStream(t *testing.T, n int) string {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	var sb strings.Builder
	sb.WriteString("x,noise,colour,class\n")
	colours := []string{"red", "green", "blue"}
	for i := 0; i < n; i++ {
		class := "neg"
		x := rng.Float64()
		if i%2 == 1 {
			class = "pos"
			x += 2
		}
		fmt.Fprintf(&sb, "%.4f,%.4f,%s,%s\n", x, rng.NormFloat64(), colours[rng.Intn(3)], class)
	}
	path := filepath.Join(t.TempDir(), "stream.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	prev := log.SetLoggerProvider(log.NewZerologProvider(&bytes.Buffer{}))
	t.Cleanup(func() { log.SetLoggerProvider(prev) })

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTrainCommand(t *testing.T) {
	path := writeStream(t, 2000)
	plotPath := filepath.Join(t.TempDir(), "curve.png")

	out, err := execute(t, "train", path,
		"--header",
		"--nominal", "2",
		"--batch-size", "200",
		"--grace-period", "100",
		"--partitions", "2",
		"--leaf-prediction", "mc",
		"--drift",
		"--plot", plotPath,
		"--print-tree",
		"--log-format", "json",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Hoeffding tree")
	assert.Contains(t, out, "neg, pos")
	assert.Contains(t, out, "prequential accuracy")
	assert.Contains(t, out, "Split on f0")

	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTrainCommand_Stdin(t *testing.T) {
	out, err := executeWithInput(t, "1,a\n2,b\n", "train", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "no predictions were made")
}

func TestTrainCommand_InvalidFlags(t *testing.T) {
	path := writeStream(t, 10)
	for _, args := range [][]string{
		{"train", path, "--leaf-prediction", "xx"},
		{"train", path, "--criterion", "variance"},
		{"train", path, "--batch-size", "0", "--header"},
		{"train", path, "--nominal", "a"},
		{"train", path, "--log-level", "loud"},
		{"train", path, "--log-format", "xml"},
		{"train", filepath.Join(t.TempDir(), "missing.csv")},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestRunPrequential(t *testing.T) {
	path := writeStream(t, 600)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	ds, err := readDataset(f, csvOptions{header: true, labelColumn: -1, nominal: []int{2}})
	require.NoError(t, err)

	ht := tree.NewHoeffdingTreeClassifier(
		tree.WithLeafPrediction(tree.MajorityClass),
		tree.WithGracePeriod(50),
		tree.WithFeatureSpecs(ds.featureSpecs(10)...),
	)
	res, err := runPrequential(context.Background(), ht, ds, 100, nil)
	require.NoError(t, err)

	assert.Equal(t, 6, res.batches)
	assert.Len(t, res.curve, 5, "the first batch is only learned")
	assert.Equal(t, 500.0, res.accuracy.Weight())
	assert.Greater(t, res.accuracy.Value(), 0.9)
	for i := 1; i < len(res.curve); i++ {
		assert.Greater(t, res.curve[i].seen, res.curve[i-1].seen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runPrequential(ctx, tree.NewHoeffdingTreeClassifier(), ds, 100, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "vfdt "))
}
