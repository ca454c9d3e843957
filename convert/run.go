package convert

import (
	"archive/zip"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/language"

	"github.com/cebtenzzre/npf2html/archive"
	"github.com/cebtenzzre/npf2html/common"
	"github.com/cebtenzzre/npf2html/config"
	"github.com/cebtenzzre/npf2html/content"
	"github.com/cebtenzzre/npf2html/content/text"
	"github.com/cebtenzzre/npf2html/convert/html"
	"github.com/cebtenzzre/npf2html/convert/page"
	"github.com/cebtenzzre/npf2html/css"
	"github.com/cebtenzzre/npf2html/npf"
	"github.com/cebtenzzre/npf2html/state"
)

//go:embed default.css
var defaultStylesheet []byte

// class prefix used by embedded stylesheet
const defaultStylesheetPrefix = "npf"

// expandedRenderer shows content after truncation point inline.
type expandedRenderer struct {
	*html.HTMLRenderer
}

func (expandedRenderer) RenderTruncateLayout(inner string) string {
	return inner
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Document.OutputFormat
	if to := cmd.String("to"); len(to) > 0 {
		if format, err = common.ParseOutputFmt(to); err != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Error(err), zap.Stringer("format", env.Cfg.Document.OutputFormat))
			format = env.Cfg.Document.OutputFormat
		}
	}

	if format.Standalone() {
		if env.DefaultStyle, err = loadStylesheet(&env.Cfg.Document, log); err != nil {
			return err
		}
	}
	env.Renderer = newRenderer(env)

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, log)
}

// loadStylesheet returns stylesheet for standalone pages with class names
// using configured prefix.
func loadStylesheet(cfg *config.DocumentConfig, log *zap.Logger) ([]byte, error) {
	var (
		data   []byte
		err    error
		source = "embedded"
	)
	if cfg.StylesheetPath != "" {
		if data, err = os.ReadFile(cfg.StylesheetPath); err != nil {
			return nil, fmt.Errorf("unable to read style css from %q: %w", cfg.StylesheetPath, err)
		}
		source = cfg.StylesheetPath
	} else if data, err = css.RewritePrefix(defaultStylesheet, defaultStylesheetPrefix, cfg.ClassPrefix); err != nil {
		return nil, fmt.Errorf("unable to prepare default stylesheet: %w", err)
	}

	sheet := css.NewParser(log).Parse(data, source)
	for _, w := range sheet.Warnings {
		log.Warn("Problem in stylesheet", zap.String("source", source), zap.String("details", w))
	}
	if len(sheet.Imports) > 0 {
		log.Warn("Stylesheet imports will not be inlined", zap.String("source", source), zap.Strings("imports", sheet.Imports))
	}
	if !sheet.HasPrefix(cfg.ClassPrefix) {
		log.Warn("Stylesheet does not style any classes with configured prefix",
			zap.String("source", source), zap.String("prefix", cfg.ClassPrefix))
	}
	return data, nil
}

func newRenderer(env *state.LocalEnv) html.Renderer {
	opts := env.ConvertOptions(nil)
	r := html.NewRenderer(opts.Prefix, opts.AskingAvatar)
	if env.Cfg.Document.ExpandTruncated {
		return expandedRenderer{r}
	}
	return r
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, format common.OutputFmt, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, format, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		archive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if archive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, tail, "", dst, format, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		post, enc, err := isPostFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if post && len(tail) == 0 {
			// encoding will be handled properly by processPosts
			if file, err := os.Open(head); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			} else {
				defer file.Close()
				if err := processPosts(ctx, selectReader(file, enc), filepath.Base(head), dst, format, log); err != nil {
					log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
				}
			}
			break
		}
		return fmt.Errorf("input was not recognized as NPF JSON (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding NPF files and archives and
// processes them.
func processDir(ctx context.Context, dir, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		archive, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if archive {
			count++
			if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, format, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		post, enc, err := isPostFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !post {
			log.Debug("Skipping file, not recognized as NPF or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processPosts(ctx, selectReader(file, enc), src, dst, format, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive walks all files inside archive, finds NPF files under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	err = archive.Walk(path, pathIn, func(archive string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		post, enc, err := isPostInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", archive), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !post {
			log.Debug("Skipping file, not recognized as NPF", zap.String("archive", archive), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := processPosts(ctx, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(pathInArchive)), dst, format, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	return err
}

// processPosts converts every post of a single NPF source. "src" is part of
// the source path (always including file name) relative to the original
// path. When actual file was specified it will be just base file name
// without a path. When looking inside archive or directory it will be
// relative path inside archive or directory (including base file name).
// "dst" is the destination directory where converted files should be
// written. Failure of one post does not stop processing of the rest.
func processPosts(ctx context.Context, r io.Reader, src string, dst string, format common.OutputFmt, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var converted int

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// one bad post should not stop processing of the whole backup
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("from", src), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("from", src), zap.Int("posts", converted))
		}
	}(time.Now())

	c, err := content.Prepare(ctx, r, src, format, log)
	if err != nil {
		return fmt.Errorf("unable to parse NPF source (%s): %w", src, err)
	}

	var splitter *text.Splitter
	if format.Standalone() {
		splitter = text.NewSplitter(language.Make(env.Cfg.Document.Page.Language), log)
	}

	var errs error
	for i := range c.Posts {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		outputName, err := processPost(c, i, splitter, dst, env, log)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("post %d (%s): %w", i, c.Posts[i].ID, err))
			continue
		}
		converted++

		// Store conversion result for debugging
		if env.Rpt != nil {
			env.Rpt.Store(fmt.Sprintf("result-%s%s", c.Posts[i].ID, filepath.Ext(outputName)), outputName)
		}
	}
	return errs
}

// processPost renders single post and writes it out, returns name of the
// output file.
func processPost(c *content.Content, index int, splitter *text.Splitter, dst string, env *state.LocalEnv, log *zap.Logger) (string, error) {
	post := c.Posts[index]
	if !env.Cfg.Document.RenderTrail {
		post.Trail = nil
	}

	fragment, err := html.RenderPost(&post, env.ConvertOptions(log))
	if err != nil {
		return "", fmt.Errorf("unable to render post: %w", err)
	}

	out := fragment
	if c.OutputFormat.Standalone() {
		if out, err = buildPage(c, &post, index, splitter, fragment, env, log); err != nil {
			return "", err
		}
	}

	// Determine output file name and path based on input and configuration.
	outputName := buildOutputPath(c, &post, index, c.SrcName, dst, env)
	if err := writeOutput(outputName, []byte(out), env.Overwrite, log); err != nil {
		return "", err
	}
	log.Debug("Post written", zap.String("id", post.ID), zap.String("to", outputName))
	return outputName, nil
}

func buildPage(c *content.Content, post *npf.Post, index int, splitter *text.Splitter, fragment string, env *state.LocalEnv, log *zap.Logger) (string, error) {
	cfg := &env.Cfg.Document

	title, err := expandTemplate(c, post, index, config.PageTitleTemplateFieldName, cfg.Page.TitleTemplate)
	if err != nil {
		log.Warn("Unable to prepare page title", zap.String("post", post.ID), zap.Error(err))
		title = ""
	}
	if title = strings.TrimSpace(title); title == "" {
		title = post.AsTitleText(post.ID)
	}

	doc, err := page.Build(fragment, page.Meta{
		Title:       title,
		Language:    cfg.Page.Language,
		Description: page.Excerpt(splitter, post.AsPlainText(), cfg.Page.DescriptionLength),
		Canonical:   post.PostURL,
		Prefix:      cfg.ClassPrefix,
		Stylesheet:  env.DefaultStyle,
	})
	if err != nil {
		return "", fmt.Errorf("unable to build page: %w", err)
	}
	return doc, nil
}

func writeOutput(outputName string, data []byte, overwrite bool, log *zap.Logger) error {
	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
