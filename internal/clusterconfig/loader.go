// Package clusterconfig materialises model.ClusterInfo from a local or
// object-store file and detects changes by signature, grounded on the
// teacher's cluster.Load/refresh split (master/cluster/cluster.go) adapted
// to a config file instead of a raft-replicated node table.
package clusterconfig

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nipatil-cybage/nebula/internal/errs"
	"github.com/nipatil-cybage/nebula/internal/model"
	"github.com/nipatil-cybage/nebula/internal/telemetry"
)

// Loader fetches, parses, and caches the cluster config document.
type Loader struct {
	uri string

	httpClient *http.Client

	lastSignature string
	lastInfo      *model.ClusterInfo
}

func NewLoader(uri string) *Loader {
	return &Loader{uri: uri, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// Load returns the current ClusterInfo and its signature. If the signature
// is unchanged from the previous call, the same *model.ClusterInfo is
// returned (readers may safely retain it). Transient fetch errors keep the
// previous snapshot and surface errs.ErrConfigUnavailable; parse errors
// surface errs.ErrConfigInvalid and also keep the previous snapshot.
func (l *Loader) Load(ctx context.Context) (*model.ClusterInfo, string, error) {
	log, ctx := telemetry.StartSpan(ctx, "clusterconfig.Load")

	raw, sig, err := l.fetch(ctx)
	if err != nil {
		log.Warnf("fetch cluster config %q failed: %s", l.uri, err)
		if l.lastInfo != nil {
			return l.lastInfo, l.lastSignature, fmt.Errorf("%w: %s", errs.ErrConfigUnavailable, err)
		}
		return nil, "", fmt.Errorf("%w: %s", errs.ErrConfigUnavailable, err)
	}

	if sig == l.lastSignature && l.lastInfo != nil {
		return l.lastInfo, l.lastSignature, nil
	}

	info, err := parseDocument(raw)
	if err != nil {
		log.Errorf("parse cluster config %q failed: %s", l.uri, err)
		if l.lastInfo != nil {
			return l.lastInfo, l.lastSignature, fmt.Errorf("%w: %s", errs.ErrConfigInvalid, err)
		}
		return nil, "", fmt.Errorf("%w: %s", errs.ErrConfigInvalid, err)
	}

	log.Infof("cluster config changed, signature %s -> %s", l.lastSignature, sig)
	l.lastSignature = sig
	l.lastInfo = info
	return info, sig, nil
}

// fetch returns the raw document bytes and its content signature, without
// parsing. local:// (or bare path) URIs sign on size+mtime; s3:// URIs are
// copied to a temp file and sign on size+hash64(contents).
func (l *Loader) fetch(ctx context.Context) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(l.uri, "s3://"):
		return l.fetchS3(ctx)
	case strings.HasPrefix(l.uri, "local://"):
		return l.fetchLocal(strings.TrimPrefix(l.uri, "local://"))
	default:
		return l.fetchLocal(l.uri)
	}
}

func (l *Loader) fetchLocal(path string) ([]byte, string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	sig := fmt.Sprintf("%d_%d", fi.Size(), fi.ModTime().UnixNano())
	return data, sig, nil
}

// fetchS3 downloads the object to a temp local path, per §4.1, then signs
// on the fetched bytes. No S3 SDK is present anywhere in the retrieved
// example pack (see DESIGN.md); the object is fetched with the standard
// library from https://<bucket>/<key> (the s3:// prefix replaced by
// https://) instead of fabricating an SDK dependency.
func (l *Loader) fetchS3(ctx context.Context) ([]byte, string, error) {
	url := "https://" + strings.TrimPrefix(l.uri, "s3://")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("s3 fetch %s: status %d", l.uri, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "nebula-cluster-config-*.yml")
	if err != nil {
		return nil, "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, "", err
	}

	sig := fmt.Sprintf("%d_%s", len(data), hash64(data))
	return data, sig, nil
}

func hash64(data []byte) string {
	sum := sha256.Sum256(data)
	var h uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(sum[i])
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	return hex.EncodeToString(b[:])
}
