// Package assets resolves adhan sound asset keys into playable sources:
// either files in a local directory or objects in an S3-compatible Spaces
// bucket fronted by a CDN.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

// SoundStore maps an asset key ("adhan_makkah.mp3") to a playable source.
type SoundStore interface {
	ResolveSource(name string) (string, error)
}

type LocalSounds struct {
	dir string
}

func NewLocalSounds(dir string) *LocalSounds {
	return &LocalSounds{dir: dir}
}

func (ls *LocalSounds) ResolveSource(name string) (string, error) {
	// Keys are bare file names; reject anything trying to walk out.
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid sound asset name %q", name)
	}

	path := filepath.Join(ls.dir, name)
	if _, err := os.Stat(path); err != nil {
		log.Error().Err(err).Str("asset", name).Msg("sound asset missing")
		return "", fmt.Errorf("sound asset %q: %w", name, err)
	}
	return path, nil
}

type SpacesSounds struct {
	client *s3.S3
	bucket string
	cdnURL string
	prefix string
}

func NewSpacesSounds(endpoint, region, bucket, cdnURL, accessKey, secretKey, prefix string) (*SpacesSounds, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesSounds{
		client: s3.New(sess),
		bucket: bucket,
		cdnURL: strings.TrimSuffix(cdnURL, "/"),
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// ResolveSource prefers the CDN URL; without one it falls back to a
// presigned GET on the bucket object.
func (ss *SpacesSounds) ResolveSource(name string) (string, error) {
	key := name
	if ss.prefix != "" {
		key = ss.prefix + "/" + name
	}

	if ss.cdnURL != "" {
		return ss.cdnURL + "/" + key, nil
	}

	req, _ := ss.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(ss.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(15 * time.Minute)
	if err != nil {
		log.Error().Err(err).Str("asset", name).Msg("failed to presign sound asset")
		return "", fmt.Errorf("presign sound asset %q: %w", name, err)
	}
	return url, nil
}
