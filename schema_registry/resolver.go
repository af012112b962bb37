package schema_registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// DescriptorOutputDirEnv overrides where ProtocResolver writes descriptor sets.
const DescriptorOutputDirEnv = "DESCRIPTOR_OUTPUT_DIR"

// DefaultCompiler is the protoc binary ProtocResolver runs.
const DefaultCompiler = "protoc"

// DescriptorResolver produces the serialized FileDescriptorSet describing a
// message type and everything it imports.
type DescriptorResolver interface {
	Resolve(ctx context.Context, desc protoreflect.MessageDescriptor) ([]byte, error)
}

// CommandRunner runs an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ProtocResolver locates the .proto source of a message under Root and
// compiles it with protoc into <file>.desc.
//
// The source file is <package>.proto, where <package> is the second to last
// segment of the message's full name (nakji.evm.Block is looked up as
// evm.proto). A .desc file that already exists is reused as is.
type ProtocResolver struct {
	// Root is the directory searched for .proto files. Defaults to the
	// working directory.
	Root string

	// OutputDir receives the .desc files. Defaults to $DESCRIPTOR_OUTPUT_DIR,
	// then to the directory of the .proto file.
	OutputDir string

	// Compiler defaults to DefaultCompiler.
	Compiler string

	// Run executes the compiler. Defaults to os/exec.
	Run CommandRunner
}

// Resolve implements DescriptorResolver.
func (r ProtocResolver) Resolve(ctx context.Context, desc protoreflect.MessageDescriptor) ([]byte, error) {
	pkg, err := packageSegment(string(desc.FullName()))
	if err != nil {
		return nil, err
	}
	fileName := pkg + ".proto"

	root := r.Root
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDescriptorFileNotFound, err)
		}
	}

	protoPath, err := findFile(root, fileName)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(protoPath)

	out := filepath.Join(r.outputDir(dir), fileName+".desc")
	if _, err := os.Stat(out); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrDescriptorReadFailed, err)
		}
		if err := r.compile(ctx, dir, fileName, out); err != nil {
			return nil, err
		}
	}

	b, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescriptorReadFailed, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDescriptorReadFailed, out)
	}
	return b, nil
}

func (r ProtocResolver) outputDir(protoDir string) string {
	if r.OutputDir != "" {
		return r.OutputDir
	}
	if dir := os.Getenv(DescriptorOutputDirEnv); dir != "" {
		return dir
	}
	return protoDir
}

func (r ProtocResolver) compile(ctx context.Context, dir, fileName, out string) error {
	compiler := r.Compiler
	if compiler == "" {
		compiler = DefaultCompiler
	}
	run := r.Run
	if run == nil {
		run = execRunner
	}

	output, err := run(ctx, compiler,
		"--include_imports",
		"--descriptor_set_out="+out,
		"-I="+dir,
		fileName,
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w: %s", ErrCompilerInvocationFailed, fileName, err, bytes.TrimSpace(output))
	}
	return nil
}

// findFile returns the first regular file named name under root.
// Unreadable directories are skipped.
func findFile(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s under %s: %w", ErrDescriptorFileNotFound, name, root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s under %s", ErrDescriptorFileNotFound, name, root)
	}
	return found, nil
}

func packageSegment(fullName string) (string, error) {
	parts := strings.Split(fullName, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedTypeName, fullName)
	}
	return parts[len(parts)-2], nil
}

// RegistryResolver builds the descriptor set from the descriptors linked
// into the running binary: the message's file plus its transitive imports,
// dependencies first. It needs neither protoc nor the .proto sources.
type RegistryResolver struct{}

// Resolve implements DescriptorResolver.
func (RegistryResolver) Resolve(_ context.Context, desc protoreflect.MessageDescriptor) ([]byte, error) {
	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)

	var visit func(fd protoreflect.FileDescriptor)
	visit = func(fd protoreflect.FileDescriptor) {
		if fd == nil || fd.IsPlaceholder() || seen[fd.Path()] {
			return
		}
		seen[fd.Path()] = true
		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			visit(imports.Get(i).FileDescriptor)
		}
		set.File = append(set.File, protodesc.ToFileDescriptorProto(fd))
	}
	visit(desc.ParentFile())

	b, err := proto.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescriptorReadFailed, err)
	}
	return b, nil
}

// observedResolver reports each resolution to the client's observer.
type observedResolver struct {
	client *Client
	next   DescriptorResolver
}

func (r observedResolver) Resolve(ctx context.Context, desc protoreflect.MessageDescriptor) ([]byte, error) {
	start := time.Now()
	b, err := r.next.Resolve(ctx, desc)
	r.client.observeOperation("resolve_descriptor", string(desc.FullName()), desc.ParentFile().Path(), time.Since(start), err, int64(len(b)), nil)
	return b, err
}
