package config

import (
	"github.com/go-ini/ini"
	"github.com/pkg/errors"
)

// LoadJobDescriptor reads a job-descriptor file in the [job] section and
// applies any keys present onto opt, leaving fields the file doesn't
// mention untouched. This is the optional, file-based counterpart to the
// CLI's flags - a site running pftool from a batch scheduler can check a
// descriptor into version control instead of reconstructing a long flag
// line per job.
func LoadJobDescriptor(path string, opt *Options) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return errors.Wrapf(err, "failed to load job descriptor %s", path)
	}
	sec := cfg.Section("job")

	if sec.HasKey("recurse") {
		v, err := sec.Key("recurse").Bool()
		if err != nil {
			return errors.Wrapf(err, "job descriptor %s: recurse", path)
		}
		opt.Recurse = v
	}
	if sec.HasKey("num_workers") {
		v, err := sec.Key("num_workers").Int()
		if err != nil {
			return errors.Wrapf(err, "job descriptor %s: num_workers", path)
		}
		opt.NumWorkers = v
	}
	if sec.HasKey("block_size") {
		v, err := sec.Key("block_size").Int64()
		if err != nil {
			return errors.Wrapf(err, "job descriptor %s: block_size", path)
		}
		opt.BlockSize = v
	}
	if sec.HasKey("chunk_at") {
		v, err := sec.Key("chunk_at").Int64()
		if err != nil {
			return errors.Wrapf(err, "job descriptor %s: chunk_at", path)
		}
		opt.ChunkAt = v
	}
	if sec.HasKey("chunk_size") {
		v, err := sec.Key("chunk_size").Int64()
		if err != nil {
			return errors.Wrapf(err, "job descriptor %s: chunk_size", path)
		}
		opt.ChunkSize = v
	}
	if sec.HasKey("only_if_different") {
		v, err := sec.Key("only_if_different").Bool()
		if err != nil {
			return errors.Wrapf(err, "job descriptor %s: only_if_different", path)
		}
		opt.OnlyIfDifferent = v
	}
	if sec.HasKey("dest_fs_override") {
		opt.DestFsOverride = sec.Key("dest_fs_override").String()
	}
	if sec.HasKey("log_path") {
		opt.LogPath = sec.Key("log_path").String()
	}
	return nil
}
