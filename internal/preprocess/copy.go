package preprocess

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/verprep/internal/fileutil"
	"github.com/harrison/verprep/internal/models"
	"github.com/harrison/verprep/internal/pathresolve"
	"github.com/harrison/verprep/internal/versioncond"
)

// Copy copies every eligible source file beneath FromDir to the same
// relative location beneath ToDir with its extension changed to ToExt.
// A file is eligible when at least one of its lines carries Marker and
// every such line holds for TargetVersion. File bytes are copied unchanged.
//
// The returned result is non-nil whenever files were processed, including
// when the error is a *RunError.
func (p *Preprocessor) Copy(ctx context.Context, opts CopyOptions) (*models.RunResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	codec, err := fileutil.LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	p.logger.LogInfo(fmt.Sprintf("copy from=%s to=%s target version=%d", opts.FromDir, opts.ToDir, opts.TargetVersion))
	p.logger.LogDebug(fmt.Sprintf("copy extension %s -> %s, marker=%q, encoding=%s", opts.FromExt, opts.ToExt, opts.Marker, codec.Name()))

	collect := func() ([]job, error) {
		pattern := sourcePattern(pathresolve.Wildcard, opts.FromExt)
		files, err := pathresolve.Resolve(opts.FromDir, pattern, pathresolve.FilesOnly)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", pattern, err)
		}
		p.logger.LogTrace(fmt.Sprintf("%s resolved to %d file(s) under %s", pattern, len(files), opts.FromDir))
		return p.buildJobs(&opts.Options, files, make(map[string]bool), nil)
	}

	return p.execute(ctx, models.GoalCopy, &opts.Options, collect, func(_ context.Context, j job) models.FileResult {
		return copyOne(&opts, codec, j)
	})
}

func copyOne(opts *CopyOptions, codec *fileutil.TextCodec, j job) models.FileResult {
	res := models.FileResult{Source: j.source, Destination: j.dest}

	lines, err := codec.ReadLines(j.source)
	if err != nil {
		return failed(res, "read failed", err)
	}

	eligible, err := versioncond.EvaluateLines(lines, opts.Marker, opts.TargetVersion)
	if err != nil {
		return failed(res, "version condition", err)
	}
	if !eligible {
		res.Status = models.StatusSkipped
		res.Destination = ""
		res.Reason = skipReason(lines, opts.Marker, opts.TargetVersion)
		return res
	}

	if !opts.DryRun {
		if err := fileutil.CopyFile(j.source, j.dest); err != nil {
			return failed(res, "copy failed", err)
		}
	}
	res.Status = models.StatusCopied
	return res
}

func skipReason(lines []string, marker string, target int) string {
	for _, line := range lines {
		if strings.Contains(line, marker) {
			return fmt.Sprintf("not eligible for version %d", target)
		}
	}
	return "no version condition"
}
