// ABOUTME: HTTP fetcher downloading .tar.gz module archives with optional sha256 pinning
// ABOUTME: Honors HTTP(S)_PROXY/NO_PROXY; extraction rejects paths escaping the module dir

package delivery

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/net/http/httpproxy"
)

// ErrDigestMismatch is returned when a downloaded archive fails verification.
var ErrDigestMismatch = errors.New("archive digest mismatch")

// maxArchiveFileSize caps a single extracted file.
const maxArchiveFileSize = 512 << 20

// HTTPFetcher implements Fetcher by downloading gzipped tarballs.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher whose client resolves proxies from the
// environment each time it is created.
func NewHTTPFetcher() *HTTPFetcher {
	proxy := httpproxy.FromEnvironment().ProxyFunc()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = func(r *http.Request) (*url.URL, error) {
		return proxy(r.URL)
	}
	transport.TLSHandshakeTimeout = 10 * time.Second
	transport.ResponseHeaderTimeout = 30 * time.Second
	transport.IdleConnTimeout = 30 * time.Second
	transport.MaxIdleConnsPerHost = 2
	return &HTTPFetcher{Client: &http.Client{Transport: transport, Timeout: 10 * time.Minute}}
}

// Fetch downloads src.Location and extracts it into dest.
func (h *HTTPFetcher) Fetch(ctx context.Context, name string, src Source, dest string) (string, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", name, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %s", name, resp.Status)
	}

	digest := sha256.New()
	body := io.TeeReader(resp.Body, digest)
	if err := extractTarGz(body, dest); err != nil {
		return "", fmt.Errorf("extracting %s: %w", name, err)
	}
	// Hash trailing bytes after the tar end marker too.
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}

	sum := hexSum(digest)
	if src.SHA256 != "" && sum != src.SHA256 {
		return "", fmt.Errorf("%s: %w: got %s, want %s", name, ErrDigestMismatch, sum, src.SHA256)
	}
	return "sha256:" + sum[:12], nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// extractTarGz unpacks a gzipped tar stream into dest, creating it.
func extractTarGz(r io.Reader, dest string) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		rel := filepath.Clean(filepath.FromSlash(hdr.Name))
		if rel == "." {
			continue
		}
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("entry %q escapes module directory", hdr.Name)
		}
		if err := checkNoSymlinks(dest, rel); err != nil {
			return fmt.Errorf("entry %q: %w", hdr.Name, err)
		}
		target := filepath.Join(dest, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if hdr.Size > maxArchiveFileSize {
				return fmt.Errorf("entry %q too large (%d bytes)", hdr.Name, hdr.Size)
			}
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) || !linkStaysInside(dest, filepath.Dir(rel), hdr.Linkname) {
				return fmt.Errorf("symlink %q -> %q escapes module directory", hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			// Devices, fifos and hard links have no place in a module.
		}
	}
}

// checkNoSymlinks fails when rel, or any directory leading to it, is a symlink
// already extracted under dest. Writes never follow links from the archive.
func checkNoSymlinks(dest, rel string) error {
	cur := dest
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		fi, err := os.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("path crosses symlink %q", part)
		}
	}
	return nil
}

// linkStaysInside walks link component by component from dir, the link's
// directory relative to dest. Stepping through an existing symlink or above
// dest is rejected, so chained links cannot reach outside the module.
func linkStaysInside(dest, dir, link string) bool {
	var stack []string
	if dir != "." {
		stack = strings.Split(dir, string(filepath.Separator))
	}
	for _, part := range strings.Split(filepath.FromSlash(link), string(filepath.Separator)) {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return false
			}
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, part)
		fi, err := os.Lstat(filepath.Join(append([]string{dest}, stack...)...))
		if err == nil && fi.Mode()&fs.ModeSymlink != 0 {
			return false
		}
	}
	return true
}

func writeFile(path string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
