// ABOUTME: Tests for the delivery service across builtin, local, git, and HTTP sources
// ABOUTME: Uses tempdirs, local bare repos, and httptest-served gzipped tarballs

package delivery

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/mauromedda/featuremod-go/internal/config"
	"github.com/mauromedda/featuremod-go/internal/module"
	"github.com/mauromedda/featuremod-go/internal/native"
)

func newTestService(t *testing.T, catalog ...config.ModuleSpec) *Service {
	t.Helper()
	s, err := NewService(filepath.Join(t.TempDir(), "modules"), catalog)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	return s
}

// ---------------------------------------------------------------------------
// Builtin and catalog tests
// ---------------------------------------------------------------------------

func TestService_InstallBuiltin(t *testing.T) {
	t.Parallel()
	s := newTestService(t, config.ModuleSpec{Name: "test_dummy", Source: "builtin"})

	if err := s.Install(context.Background(), module.MustName("test_dummy")); err != nil {
		t.Fatalf("Install: %v", err)
	}

	m, err := s.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	e := m.Find("test_dummy")
	if e == nil {
		t.Fatal("test_dummy not recorded")
	}
	if e.Kind != KindBuiltin || e.Version != "builtin" || e.Path != "" {
		t.Errorf("entry = %+v", e)
	}

	names, err := s.Installed()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "test_dummy" {
		t.Errorf("Installed = %v", names)
	}

	_, err = s.Library("test_dummy")
	if !errors.Is(err, native.ErrNoEntryPoints) {
		t.Errorf("Library err = %v; want ErrNoEntryPoints", err)
	}
}

func TestService_InstallUnknownModule(t *testing.T) {
	t.Parallel()
	s := newTestService(t)

	err := s.Install(context.Background(), module.MustName("ghost"))
	if !errors.Is(err, module.ErrUnknownModule) {
		t.Errorf("err = %v; want ErrUnknownModule", err)
	}
}

func TestService_InstallMissingFetcher(t *testing.T) {
	t.Parallel()
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: "https://github.com/u/vr"})
	delete(s.fetchers, KindGit)

	err := s.Install(context.Background(), module.MustName("vr"))
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("err = %v; want ErrNoSource", err)
	}
}

// ---------------------------------------------------------------------------
// Local source tests
// ---------------------------------------------------------------------------

func TestService_InstallLocal(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeDescriptor(t, src, "---\nname: vr\nlibrary: libvr.so\nentry_points: [vr_init]\n---\nVR module\n")
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: src})

	if err := s.Install(context.Background(), module.MustName("vr")); err != nil {
		t.Fatalf("Install: %v", err)
	}

	target, err := os.Readlink(s.ModuleDir("vr"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	absSrc, _ := filepath.Abs(src)
	if target != absSrc {
		t.Errorf("symlink target = %q; want %q", target, absSrc)
	}

	m, _ := s.Manifest()
	if e := m.Find("vr"); e == nil || e.Version != "local" {
		t.Errorf("entry = %+v", e)
	}

	lib, err := s.Library("vr")
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	if lib.Path != filepath.Join(s.ModuleDir("vr"), "libvr.so") {
		t.Errorf("Path = %q", lib.Path)
	}
	if len(lib.EntryPoints) != 1 || lib.EntryPoints[0] != "vr_init" {
		t.Errorf("EntryPoints = %v", lib.EntryPoints)
	}
}

func TestService_InstallLocalReplacesExisting(t *testing.T) {
	t.Parallel()

	src1, src2 := t.TempDir(), t.TempDir()
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: src1})
	if err := s.Install(context.Background(), module.MustName("vr")); err != nil {
		t.Fatalf("first install: %v", err)
	}

	s.catalog["vr"] = config.ModuleSpec{Name: "vr", Source: src2}
	if err := s.Install(context.Background(), module.MustName("vr")); err != nil {
		t.Fatalf("second install: %v", err)
	}

	target, _ := os.Readlink(s.ModuleDir("vr"))
	absSrc2, _ := filepath.Abs(src2)
	if target != absSrc2 {
		t.Errorf("symlink target = %q; want %q", target, absSrc2)
	}
}

func TestService_InstallRejectsMismatchedDescriptor(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeDescriptor(t, src, "---\nname: ar\n---\n")
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: src})

	if err := s.Install(context.Background(), module.MustName("vr")); err == nil {
		t.Fatal("expected descriptor validation error")
	}
	if _, err := os.Lstat(s.ModuleDir("vr")); !os.IsNotExist(err) {
		t.Error("failed install left module in place")
	}
	m, _ := s.Manifest()
	if m.Find("vr") != nil {
		t.Error("failed install recorded in manifest")
	}
}

func TestService_InstalledSkipsMissingDirs(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	s := newTestService(t,
		config.ModuleSpec{Name: "vr", Source: src},
		config.ModuleSpec{Name: "test_dummy", Source: "builtin"},
	)
	ctx := context.Background()
	for _, n := range []string{"vr", "test_dummy"} {
		if err := s.Install(ctx, module.MustName(n)); err != nil {
			t.Fatalf("Install %s: %v", n, err)
		}
	}
	if err := os.Remove(s.ModuleDir("vr")); err != nil {
		t.Fatal(err)
	}

	names, err := s.Installed()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "test_dummy" {
		t.Errorf("Installed = %v; want [test_dummy]", names)
	}
}

func TestService_Remove(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: src})
	if err := s.Install(context.Background(), module.MustName("vr")); err != nil {
		t.Fatal(err)
	}

	if err := s.Remove("vr"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Lstat(s.ModuleDir("vr")); !os.IsNotExist(err) {
		t.Error("module dir still present")
	}
	// Removing a symlinked module must not touch its source tree.
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source dir removed: %v", err)
	}
	if err := s.Remove("vr"); err == nil {
		t.Error("expected error removing twice")
	}
}

// ---------------------------------------------------------------------------
// HTTP source tests
// ---------------------------------------------------------------------------

type tarEntry struct {
	name     string
	body     string
	typeflag byte
	linkname string
}

func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Typeflag: e.typeflag, Linkname: e.linkname}
		switch e.typeflag {
		case tar.TypeDir:
			hdr.Mode = 0o755
		case tar.TypeReg:
			hdr.Size = int64(len(e.body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if e.typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func serveArchive(t *testing.T, archive []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".tar.gz") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(archive)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestService_InstallHTTP(t *testing.T) {
	t.Parallel()

	archive := buildTarGz(t, []tarEntry{
		{name: "lib/", typeflag: tar.TypeDir},
		{name: "lib/libvr.so", body: "ELF", typeflag: tar.TypeReg},
		{name: "MODULE.md", body: "---\nname: vr\nversion: 2.0.1\nlibrary: lib/libvr.so\nentry_points: [vr_init]\n---\n", typeflag: tar.TypeReg},
		{name: "current", typeflag: tar.TypeSymlink, linkname: "lib/libvr.so"},
	})
	srv := serveArchive(t, archive)
	source := srv.URL + "/vr.tar.gz#sha256=" + sha256Hex(archive)
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: source})
	s.fetchers[KindHTTP] = &HTTPFetcher{Client: srv.Client()}

	if err := s.Install(context.Background(), module.MustName("vr")); err != nil {
		t.Fatalf("Install: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.ModuleDir("vr"), "lib", "libvr.so"))
	if err != nil || string(data) != "ELF" {
		t.Errorf("libvr.so = %q, %v", data, err)
	}
	m, _ := s.Manifest()
	if e := m.Find("vr"); e == nil || e.Version != "2.0.1" || e.Kind != KindHTTP {
		t.Errorf("entry = %+v", e)
	}

	entries, _ := os.ReadDir(s.Dir())
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".staging-") {
			t.Errorf("staging dir %s left behind", e.Name())
		}
	}
}

func TestService_InstallHTTPDigestMismatch(t *testing.T) {
	t.Parallel()

	archive := buildTarGz(t, []tarEntry{{name: "README", body: "hi", typeflag: tar.TypeReg}})
	srv := serveArchive(t, archive)
	source := srv.URL + "/vr.tar.gz#sha256=" + strings.Repeat("0", 64)
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: source})
	s.fetchers[KindHTTP] = &HTTPFetcher{Client: srv.Client()}

	err := s.Install(context.Background(), module.MustName("vr"))
	if !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("err = %v; want ErrDigestMismatch", err)
	}
	if _, err := os.Stat(s.ModuleDir("vr")); !os.IsNotExist(err) {
		t.Error("mismatched archive was installed")
	}
}

func TestService_InstallHTTPUnpinnedVersion(t *testing.T) {
	t.Parallel()

	archive := buildTarGz(t, []tarEntry{{name: "README", body: "hi", typeflag: tar.TypeReg}})
	srv := serveArchive(t, archive)
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: srv.URL + "/vr.tar.gz"})
	s.fetchers[KindHTTP] = &HTTPFetcher{Client: srv.Client()}

	if err := s.Install(context.Background(), module.MustName("vr")); err != nil {
		t.Fatalf("Install: %v", err)
	}
	m, _ := s.Manifest()
	want := "sha256:" + sha256Hex(archive)[:12]
	if e := m.Find("vr"); e == nil || e.Version != want {
		t.Errorf("entry = %+v; want version %q", e, want)
	}
}

func TestService_InstallHTTPNotFound(t *testing.T) {
	t.Parallel()

	srv := serveArchive(t, nil)
	s := newTestService(t, config.ModuleSpec{Name: "vr", Source: srv.URL + "/missing.tgz"})
	s.fetchers[KindHTTP] = &HTTPFetcher{Client: srv.Client()}

	err := s.Install(context.Background(), module.MustName("vr"))
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v; want 404 status", err)
	}
}

func TestExtractTarGz_RejectsEscapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []tarEntry
	}{
		{"parent traversal", []tarEntry{{name: "../evil", body: "x", typeflag: tar.TypeReg}}},
		{"absolute path", []tarEntry{{name: "/etc/evil", body: "x", typeflag: tar.TypeReg}}},
		{"escaping symlink", []tarEntry{{name: "link", typeflag: tar.TypeSymlink, linkname: "../../etc/passwd"}}},
		{"absolute symlink", []tarEntry{{name: "link", typeflag: tar.TypeSymlink, linkname: "/etc/passwd"}}},
		{"chained symlinks", []tarEntry{
			{name: "a/", typeflag: tar.TypeDir},
			{name: "a/up", typeflag: tar.TypeSymlink, linkname: ".."},
			{name: "a/up2", typeflag: tar.TypeSymlink, linkname: "up/.."},
			{name: "a/up2/escaped", body: "x", typeflag: tar.TypeReg},
		}},
		{"write through symlink", []tarEntry{
			{name: "sub/", typeflag: tar.TypeDir},
			{name: "link", typeflag: tar.TypeSymlink, linkname: "sub"},
			{name: "link/file", body: "x", typeflag: tar.TypeReg},
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			archive := buildTarGz(t, tt.entries)
			dest := filepath.Join(t.TempDir(), "out")
			if err := extractTarGz(bytes.NewReader(archive), dest); err == nil {
				t.Error("expected escape to be rejected")
			}
			if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escaped")); err == nil {
				t.Error("file written outside the module directory")
			}
		})
	}
}

func TestExtractTarGz_KeepsInternalSymlinks(t *testing.T) {
	t.Parallel()

	archive := buildTarGz(t, []tarEntry{
		{name: "lib/", typeflag: tar.TypeDir},
		{name: "lib/libdummy.so.1", body: "elf", typeflag: tar.TypeReg},
		{name: "lib/libdummy.so", typeflag: tar.TypeSymlink, linkname: "libdummy.so.1"},
		{name: "current", typeflag: tar.TypeSymlink, linkname: "lib/../lib"},
	})
	dest := filepath.Join(t.TempDir(), "out")
	if err := extractTarGz(bytes.NewReader(archive), dest); err != nil {
		t.Fatalf("extractTarGz: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "lib", "libdummy.so"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "elf" {
		t.Errorf("library contents = %q", data)
	}
}

// ---------------------------------------------------------------------------
// Git source tests
// ---------------------------------------------------------------------------

// setupBareRepo creates a bare git repository with MODULE.md committed and
// tagged v1.0.0.
func setupBareRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	work := t.TempDir()
	run := func(dir string, args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@test.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run(work, "init", "--quiet")
	writeDescriptor(t, work, "---\nname: vr\n---\n# VR\n")
	run(work, "add", ".")
	run(work, "commit", "--quiet", "-m", "init")
	run(work, "tag", "v1.0.0")

	bare := filepath.Join(t.TempDir(), "vr.git")
	run(work, "clone", "--quiet", "--bare", work, bare)
	return bare
}

func TestGitFetcher_FetchTag(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping git test in short mode")
	}
	t.Parallel()

	bare := setupBareRepo(t)
	dest := filepath.Join(t.TempDir(), "vr")

	version, err := GitFetcher{}.Fetch(context.Background(), "vr", Source{Kind: KindGit, Location: bare, Tag: "v1.0.0"}, dest)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if version != "v1.0.0" {
		t.Errorf("version = %q; want %q", version, "v1.0.0")
	}
	d, err := ReadDescriptor(dest)
	if err != nil {
		t.Fatalf("ReadDescriptor: %v", err)
	}
	if d.Name != "vr" {
		t.Errorf("Name = %q; want %q", d.Name, "vr")
	}
}

func TestGitFetcher_FetchHead(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping git test in short mode")
	}
	t.Parallel()

	bare := setupBareRepo(t)
	dest := filepath.Join(t.TempDir(), "vr")

	version, err := GitFetcher{}.Fetch(context.Background(), "vr", Source{Kind: KindGit, Location: bare}, dest)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if version == "" || version == "unknown" {
		t.Errorf("version = %q; want short commit hash", version)
	}
}

func TestGitFetcher_BadRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "vr")
	_, err := GitFetcher{}.Fetch(context.Background(), "vr", Source{Kind: KindGit, Location: filepath.Join(t.TempDir(), "nope.git")}, dest)
	if err == nil || !strings.Contains(err.Error(), "git clone vr") {
		t.Errorf("err = %v; want git clone error", err)
	}
}

func TestGitFetcher_RejectsOptionLikeArgs(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "vr")
	for _, src := range []Source{
		{Kind: KindGit, Location: "--upload-pack=touch /tmp/pwned"},
		{Kind: KindGit, Location: "https://github.com/u/vr", Tag: "-c"},
		{Kind: KindGit, Location: "https://github.com/u/vr", Tag: "v1\x00"},
	} {
		if _, err := (GitFetcher{}).Fetch(context.Background(), "vr", src, dest); err == nil {
			t.Errorf("Fetch(%+v): expected validation error", src)
		}
	}
}
