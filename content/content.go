// Package content prepares NPF sources for conversion.
package content

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cebtenzzre/npf2html/common"
	"github.com/cebtenzzre/npf2html/npf"
	"github.com/cebtenzzre/npf2html/state"
)

// Content is a decoded NPF source: all posts found in a single input file.
type Content struct {
	SrcName      string
	OutputFormat common.OutputFmt
	Posts        []npf.Post
}

// PostID returns stable identifier for a post which does not have one,
// based on its location in the source. Converting the same source again
// produces the same names.
func PostID(srcName string, index int) string {
	name := fmt.Sprintf("npf2html:%s#%d", filepath.ToSlash(srcName), index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Prepare reads and decodes NPF source. Input is expected to be UTF-8,
// transcoding is the responsibility of the caller.
func Prepare(ctx context.Context, r io.Reader, srcName string, outputFormat common.OutputFmt, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read NPF source: %w", err)
	}

	posts, err := npf.DecodePosts(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode NPF: %w", err)
	}

	for i := range posts {
		if posts[i].ID != "" {
			continue
		}
		posts[i].ID = PostID(srcName, i)
		log.Debug("Post has no ID, generating", zap.String("source", srcName), zap.Int("index", i), zap.String("new_id", posts[i].ID))
	}

	c := &Content{
		SrcName:      srcName,
		OutputFormat: outputFormat,
		Posts:        posts,
	}

	// Save source and decoded posts for debugging
	if env.Rpt != nil {
		name := fmt.Sprintf("source/%d-%s", time.Now().UnixNano(), filepath.Base(srcName))
		env.Rpt.StoreData(name, data)
		env.Rpt.StoreData(name+"_parsed.txt", []byte(c.String()))
	}
	return c, nil
}
