package preprocess

import (
	"context"
	"fmt"
	"os"

	"github.com/harrison/verprep/internal/fileutil"
	"github.com/harrison/verprep/internal/models"
	"github.com/harrison/verprep/internal/pathresolve"
	"github.com/harrison/verprep/internal/versioncond"
)

// Replace rewrites the @START/@END markers of every source file found in
// the directories named by Dirs and writes the result beneath ToDir with the
// extension changed to ToExt. Each Dirs entry is a path pattern relative to
// FromDir; only the direct children of each matched directory are taken.
// Files matched through several entries are processed once.
//
// Output files are re-encoded with Encoding and every line is terminated
// with LineEnding. Writes are atomic.
func (p *Preprocessor) Replace(ctx context.Context, opts ReplaceOptions) (*models.RunResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	codec, err := fileutil.LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	rewriter := versioncond.NewRewriter(opts.Prefix)

	p.logger.LogInfo(fmt.Sprintf("replace from=%s to=%s target version=%d check versions=%v", opts.FromDir, opts.ToDir, opts.TargetVersion, opts.CheckVersions))
	p.logger.LogDebug(fmt.Sprintf("replace extension %s -> %s, prefix=%q, encoding=%s, dirs=%v", opts.FromExt, opts.ToExt, opts.Prefix, codec.Name(), opts.Dirs))

	collect := func() ([]job, error) {
		seen := make(map[string]bool)
		var jobs []job
		for _, dir := range opts.Dirs {
			pattern := sourcePattern(dir, opts.FromExt)
			files, err := pathresolve.Resolve(opts.FromDir, pattern, pathresolve.FilesOnly)
			if err != nil {
				return nil, fmt.Errorf("resolve %q: %w", pattern, err)
			}
			if len(files) == 0 {
				p.logger.LogDebug(fmt.Sprintf("no files match %s", pattern))
			} else {
				p.logger.LogTrace(fmt.Sprintf("%s resolved to %d file(s) under %s", pattern, len(files), opts.FromDir))
			}
			if jobs, err = p.buildJobs(&opts.Options, files, seen, jobs); err != nil {
				return nil, err
			}
		}
		return jobs, nil
	}

	return p.execute(ctx, models.GoalReplace, &opts.Options, collect, func(_ context.Context, j job) models.FileResult {
		return replaceOne(&opts, codec, rewriter, j)
	})
}

func replaceOne(opts *ReplaceOptions, codec *fileutil.TextCodec, rewriter *versioncond.Rewriter, j job) models.FileResult {
	res := models.FileResult{Source: j.source, Destination: j.dest}

	info, err := os.Stat(j.source)
	if err != nil {
		return failed(res, "stat failed", err)
	}

	lines, err := codec.ReadLines(j.source)
	if err != nil {
		return failed(res, "read failed", err)
	}

	rewritten := rewriter.RewriteLines(lines, opts.TargetVersion, opts.CheckVersions)
	if opts.Strict {
		if derr := rewriter.FindUnresolved(rewritten); derr != nil {
			return failed(res, "unresolved directive", derr)
		}
	}

	if !opts.DryRun {
		if err := codec.WriteLines(j.dest, rewritten, opts.LineEnding, info.Mode().Perm()); err != nil {
			return failed(res, "write failed", err)
		}
	}
	res.Status = models.StatusRewritten
	return res
}
