package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shootproxy/internal/app/mocks"
	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
	osfs "shootproxy/internal/infra/fs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeEncoder writes "proxy of <input>" to the job output and records jobs.
type fakeEncoder struct {
	jobs   []domain.TranscodeJob
	failOn string
}

func (f *fakeEncoder) Transcode(ctx context.Context, job domain.TranscodeJob) error {
	f.jobs = append(f.jobs, job)
	if f.failOn != "" && filepath.Base(job.Input) == f.failOn {
		return &appErrors.EncodeError{Input: job.Input, ExitCode: 1, Stderr: "moov atom not found"}
	}
	return os.WriteFile(job.Output, []byte("proxy of "+filepath.Base(job.Input)), 0o644)
}

type shootFixture struct {
	root  string
	shoot string
	dest  string
}

func newShoot(t *testing.T, cameras map[string][]string) shootFixture {
	t.Helper()
	root := t.TempDir()
	shoot := filepath.Join(root, "2024.10.02_Brand")
	for camera, files := range cameras {
		dir := filepath.Join(shoot, camera)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for _, name := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("original "+name), 0o644))
		}
	}
	return shootFixture{root: root, shoot: shoot, dest: filepath.Join(root, "_proxy")}
}

// omittedInReadOrder mirrors the traversal so expectations match whatever
// order the OS lists entries in.
func omittedInReadOrder(t *testing.T, shoot string) []string {
	t.Helper()
	osFS := osfs.OSFS{}
	var names []string
	cameras, err := osFS.ReadDir(shoot)
	require.NoError(t, err)
	for _, camera := range cameras {
		if !camera.IsDir() {
			continue
		}
		entries, err := osFS.ReadDir(filepath.Join(shoot, camera.Name()))
		require.NoError(t, err)
		for _, entry := range entries {
			if entry.IsDir() || domain.Classify(entry.Name()) == domain.CategoryOmitted {
				names = append(names, entry.Name())
			}
		}
	}
	return names
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestPipelineStagesShoot(t *testing.T) {
	fx := newShoot(t, map[string][]string{
		"A-cam": {"C0001.MP4", "IMG_1.png", "notes.txt"},
		"B-cam": {"still.JPG", "grade.drp", "clip.mxf", ".DS_Store"},
		"Drone": {"DJI_0001.mov", "DJI_0002.CR2"},
	})
	encoder := &fakeEncoder{}
	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: encoder, Destination: fx.dest}

	report, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"A-cam", "B-cam", "Drone", domain.ManifestName}, listNames(t, fx.dest))
	assert.ElementsMatch(t, []string{"C0001.MP4", "IMG_1.jpg"}, listNames(t, filepath.Join(fx.dest, "A-cam")))
	assert.ElementsMatch(t, []string{"still.JPG", "grade.drp"}, listNames(t, filepath.Join(fx.dest, "B-cam")))
	assert.ElementsMatch(t, []string{"DJI_0001.mov", "DJI_0002.jpg"}, listNames(t, filepath.Join(fx.dest, "Drone")))

	proxy, err := os.ReadFile(filepath.Join(fx.dest, "A-cam", "C0001.MP4"))
	require.NoError(t, err)
	assert.Equal(t, "proxy of C0001.MP4", string(proxy))

	copied, err := os.ReadFile(filepath.Join(fx.dest, "B-cam", "grade.drp"))
	require.NoError(t, err)
	assert.Equal(t, "original grade.drp", string(copied))

	manifest, err := os.ReadFile(filepath.Join(fx.dest, domain.ManifestName))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(omittedInReadOrder(t, fx.shoot), "\n"), string(manifest))
	assert.Len(t, report.Omitted, 3)

	assert.Len(t, encoder.jobs, 4)
	assert.Len(t, report.Items, 6)
	assert.Equal(t, "2024.10.02_Brand", report.Shoot)

	_, err = os.Stat(TempTreePath(fx.shoot))
	assert.True(t, os.IsNotExist(err), "temp tree should be removed, got %v", err)
}

func TestPipelineAllAcceptedWritesEmptyManifest(t *testing.T) {
	fx := newShoot(t, map[string][]string{
		"A-cam": {"a.jpeg", "b.gif"},
	})
	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: &fakeEncoder{}, Destination: fx.dest}

	_, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)

	manifest, err := os.ReadFile(filepath.Join(fx.dest, domain.ManifestName))
	require.NoError(t, err)
	assert.Empty(t, manifest)
}

func TestPipelineCreatesSubdirForEveryCamera(t *testing.T) {
	fx := newShoot(t, map[string][]string{
		"A-cam":  {"a.mp4"},
		"Audio":  {"zoom.wav"},
		"Empty":  nil,
		"B-cam":  {"b.m4v"},
		"Stills": {"c.tiff"},
	})
	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: &fakeEncoder{}, Destination: fx.dest}

	_, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)

	for _, camera := range []string{"A-cam", "Audio", "Empty", "B-cam", "Stills"} {
		info, err := os.Stat(filepath.Join(fx.dest, camera))
		require.NoError(t, err, camera)
		assert.True(t, info.IsDir(), camera)
	}
	assert.Empty(t, listNames(t, filepath.Join(fx.dest, "Audio")))
}

func TestPipelineRefusesExistingDestination(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"a.mp4"}})
	require.NoError(t, os.MkdirAll(fx.dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fx.dest, "keep.txt"), []byte("keep"), 0o644))

	encoder := &fakeEncoder{}
	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: encoder, Destination: fx.dest}

	_, err := pipeline.Run(context.Background(), fx.shoot)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.DestinationExists))
	assert.ErrorIs(t, err, ErrDestinationExists)

	assert.Empty(t, encoder.jobs)
	assert.Equal(t, []string{"keep.txt"}, listNames(t, fx.dest))
	_, statErr := os.Stat(TempTreePath(fx.shoot))
	assert.True(t, os.IsNotExist(statErr), "temp tree must not be created")
}

func TestPipelineEncodeFailureRemovesTempTree(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"broken.mp4"}})
	pipeline := Pipeline{
		FS:          osfs.OSFS{},
		Encoder:     &fakeEncoder{failOn: "broken.mp4"},
		Destination: fx.dest,
	}

	_, err := pipeline.Run(context.Background(), fx.shoot)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.EncodeFailure))

	var encErr *appErrors.EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, 1, encErr.ExitCode)

	_, statErr := os.Stat(TempTreePath(fx.shoot))
	assert.True(t, os.IsNotExist(statErr), "temp tree should be removed after failure")
	_, statErr = os.Stat(filepath.Join(fx.dest, domain.ManifestName))
	assert.True(t, os.IsNotExist(statErr), "manifest is only written on success")
}

func TestPipelineKeepTempOnFailure(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"broken.mp4"}})
	pipeline := Pipeline{
		FS:                osfs.OSFS{},
		Encoder:           &fakeEncoder{failOn: "broken.mp4"},
		Destination:       fx.dest,
		KeepTempOnFailure: true,
	}

	_, err := pipeline.Run(context.Background(), fx.shoot)
	require.Error(t, err)

	info, statErr := os.Stat(filepath.Join(TempTreePath(fx.shoot), "A-cam"))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestPipelineReportsProgressAndPlan(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"a.mp4", "b.jpg", "c.txt"}})

	var planned domain.ProxyPlan
	var seen []int
	pipeline := Pipeline{
		FS:          osfs.OSFS{},
		Encoder:     &fakeEncoder{},
		Destination: fx.dest,
		OnPlanned:   func(plan domain.ProxyPlan) { planned = plan },
		OnProgress: func(current, total int, entry domain.PlanEntry) {
			assert.Equal(t, 2, total)
			seen = append(seen, current)
		},
	}

	_, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)
	assert.Equal(t, 2, planned.Total())
	assert.Equal(t, []int{1, 2}, seen)
}

func TestPipelineStampsExifCaptureTime(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"still.jpg", "loop.gif"}})
	ctrl := gomock.NewController(t)

	takenAt := time.Date(2024, 10, 2, 15, 1, 0, 0, time.Local)
	metadata := mocks.NewMockMetadataReader(ctrl)
	metadata.EXPECT().
		CapturedAt(gomock.Any(), filepath.Join(fx.shoot, "A-cam", "still.jpg")).
		Return(takenAt, nil).
		Times(1)

	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: &fakeEncoder{}, Metadata: metadata, Destination: fx.dest}
	report, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)

	for _, item := range report.Items {
		if item.Name == "still.jpg" {
			assert.True(t, item.CapturedAt.Equal(takenAt))
		} else {
			assert.False(t, item.CapturedAt.IsZero())
		}
	}
}

func TestPipelineExifMissFallsBackWithWarning(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"still.jpg"}})
	ctrl := gomock.NewController(t)

	metadata := mocks.NewMockMetadataReader(ctrl)
	metadata.EXPECT().CapturedAt(gomock.Any(), gomock.Any()).Return(time.Time{}, errors.New("no exif"))

	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: &fakeEncoder{}, Metadata: metadata, Destination: fx.dest}
	report, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "still.jpg")
}

func TestPipelineDestinationStatErrorIsIOFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	filesystem := mocks.NewMockFileSystem(ctrl)
	filesystem.EXPECT().Exists("/dest").Return(false, errors.New("permission denied"))

	pipeline := Pipeline{FS: filesystem, Encoder: mocks.NewMockEncoder(ctrl), Destination: "/dest"}
	_, err := pipeline.Run(context.Background(), "/shoots/s1")
	assert.True(t, appErrors.Is(err, appErrors.IOFailure))
}

func TestPipelineRequiresDestination(t *testing.T) {
	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: &fakeEncoder{}}
	_, err := pipeline.Run(context.Background(), t.TempDir())
	assert.True(t, appErrors.Is(err, appErrors.InvalidConfig))
}

func TestTempTreePath(t *testing.T) {
	got := TempTreePath(filepath.Join("shoots", "2024.10.02_Brand") + string(filepath.Separator))
	assert.Equal(t, filepath.Join("shoots", "2024.10.02_Brand_proxy"), got)
}

func symlinkOrSkip(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestPipelineFollowsSymlinkedCamera(t *testing.T) {
	fx := newShoot(t, map[string][]string{"B-cam": {"b.jpg"}})
	card := filepath.Join(fx.root, "cards", "A-cam")
	require.NoError(t, os.MkdirAll(card, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(card, "clip.mp4"), []byte("original clip.mp4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(card, "notes.txt"), []byte("notes"), 0o644))
	symlinkOrSkip(t, card, filepath.Join(fx.shoot, "A-cam"))

	encoder := &fakeEncoder{}
	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: encoder, Destination: fx.dest}

	report, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"A-cam", "B-cam"}, report.Cameras)
	assert.Equal(t, []string{"clip.mp4"}, listNames(t, filepath.Join(fx.dest, "A-cam")))
	assert.Len(t, encoder.jobs, 1)

	manifest, err := os.ReadFile(filepath.Join(fx.dest, domain.ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", string(manifest))
}

func TestPipelineOmitsDanglingLink(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"a.mp4"}})
	symlinkOrSkip(t, filepath.Join(fx.root, "gone.txt"), filepath.Join(fx.shoot, "A-cam", "notes.txt"))
	symlinkOrSkip(t, filepath.Join(fx.root, "gone-card"), filepath.Join(fx.shoot, "C-cam"))

	pipeline := Pipeline{FS: osfs.OSFS{}, Encoder: &fakeEncoder{}, Destination: fx.dest}

	report, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)

	assert.Equal(t, []string{"A-cam"}, report.Cameras)
	assert.Equal(t, []string{"notes.txt"}, report.Omitted)
	assert.Equal(t, []string{"a.mp4"}, listNames(t, filepath.Join(fx.dest, "A-cam")))
}

func TestPipelineResolvesRelativeShoot(t *testing.T) {
	fx := newShoot(t, map[string][]string{"A-cam": {"broken.mp4"}})
	t.Chdir(fx.shoot)

	pipeline := Pipeline{
		FS:                osfs.OSFS{},
		Encoder:           &fakeEncoder{failOn: "broken.mp4"},
		Destination:       fx.dest,
		KeepTempOnFailure: true,
	}

	report, err := pipeline.Run(context.Background(), ".")
	require.Error(t, err)
	assert.Equal(t, "2024.10.02_Brand", report.Shoot)

	assert.DirExists(t, filepath.Join(fx.root, "2024.10.02_Brand_proxy", "A-cam"))
	assert.NotContains(t, listNames(t, fx.shoot), "._proxy")
}

func TestPipelineArchivalWritesStraightToDestination(t *testing.T) {
	fx := newShoot(t, map[string][]string{
		"A-cam": {"C0001.MP4", "IMG_1.png", "zoom.wav", "notes.txt"},
	})
	encoder := &fakeEncoder{}
	pipeline := Pipeline{
		FS:          osfs.OSFS{},
		Encoder:     encoder,
		Destination: fx.dest,
		Profile:     domain.ProfileArchival,
	}

	report, err := pipeline.Run(context.Background(), fx.shoot)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"C0001.MP4", "IMG_1.jpg", "zoom.wav"}, listNames(t, filepath.Join(fx.dest, "A-cam")))
	assert.Equal(t, []string{"notes.txt"}, report.Omitted)

	require.Len(t, encoder.jobs, 2)
	for _, job := range encoder.jobs {
		assert.Equal(t, filepath.Join(fx.dest, "A-cam"), filepath.Dir(job.Output))
		if filepath.Base(job.Input) == "C0001.MP4" {
			assert.Equal(t, domain.PresetCompressVideo, job.Preset)
		}
	}

	_, statErr := os.Stat(TempTreePath(fx.shoot))
	assert.True(t, os.IsNotExist(statErr), "archival runs never create a temp tree")
}
