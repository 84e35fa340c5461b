// Package builtin provides ready-made filesystem and shell tools for local
// agent runs. Failed operations are reported as error results rather than
// execution errors, so the model can see what went wrong and recover.
package builtin

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hupe1980/agentgraph/tool"
)

// All returns one instance of every builtin tool, ready for registration.
func All() []tool.Tool {
	return []tool.Tool{
		NewReadFileTool(),
		NewWriteFileTool(),
		NewListFilesTool(),
		NewTreeTool(),
		NewRunCommandTool(),
	}
}

// ReadFileInput are the parameters for the read_file tool.
type ReadFileInput struct {
	// Path is the path of the file to read.
	Path string `json:"path" jsonschema_description:"The path of the file to read"`
}

// NewReadFileTool returns a tool that reads a file's contents.
func NewReadFileTool() tool.Tool {
	return tool.NewFunctionTool("read_file",
		"Reads the content of a file at the specified path. Use absolute paths when possible to avoid "+
			"ambiguity. Always verify that the file exists before trying to read it. This tool is best used "+
			"for text files - binary files may not render correctly.",
		func(_ context.Context, input ReadFileInput) (tool.Result, error) {
			data, err := os.ReadFile(input.Path)
			if err != nil {
				return errorResult("Failed to read file '%s': %v", input.Path, err), nil
			}
			return tool.Result{Content: string(data)}, nil
		})
}

// WriteFileInput are the parameters for the write_file tool.
type WriteFileInput struct {
	// Path is the path of the file to write.
	Path string `json:"path" jsonschema_description:"The path of the file to write"`
	// Contents is the full file content to write.
	Contents string `json:"contents" jsonschema_description:"The contents to write to the file"`
}

// NewWriteFileTool returns a tool that writes a file, creating parent
// directories as needed.
func NewWriteFileTool() tool.Tool {
	return tool.NewFunctionTool("write_file",
		"Writes content to a file at the specified path, creating the file and any parent directories "+
			"if they don't exist. Use absolute paths when possible to avoid ambiguity. Be careful when using "+
			"this tool as it will overwrite existing files without warning. Always verify the path is correct.",
		func(_ context.Context, input WriteFileInput) (tool.Result, error) {
			if parent := filepath.Dir(input.Path); parent != "." {
				if err := os.MkdirAll(parent, 0o755); err != nil {
					return errorResult("Failed to create directory '%s': %v", parent, err), nil
				}
			}
			if err := os.WriteFile(input.Path, []byte(input.Contents), 0o644); err != nil {
				return errorResult("Failed to write to file '%s': %v", input.Path, err), nil
			}
			return tool.Result{Content: fmt.Sprintf("Successfully wrote to file '%s'", input.Path)}, nil
		})
}

// ListFilesInput are the parameters for the list_files tool.
type ListFilesInput struct {
	// Dir is the directory to list.
	Dir string `json:"dir" jsonschema_description:"The directory path to list files from"`
}

// NewListFilesTool returns a tool that lists the immediate entries of a
// directory.
func NewListFilesTool() tool.Tool {
	return tool.NewFunctionTool("list_files",
		"Lists all files in the specified directory. Best practice is to provide an absolute path to avoid "+
			"ambiguity. This tool does not recursively list subdirectories - use the tree tool for that purpose. "+
			"Verify the directory exists before calling this tool.",
		func(_ context.Context, input ListFilesInput) (tool.Result, error) {
			entries, err := os.ReadDir(input.Dir)
			if err != nil {
				return errorResult("Failed to read directory '%s': %v", input.Dir, err), nil
			}
			paths := make([]string, 0, len(entries))
			for _, entry := range entries {
				paths = append(paths, filepath.Join(input.Dir, entry.Name()))
			}
			return tool.Result{Content: strings.Join(paths, "\n")}, nil
		})
}

// TreeInput are the parameters for the tree tool.
type TreeInput struct {
	// Dir is the directory to walk recursively.
	Dir string `json:"dir" jsonschema_description:"The directory path to list files from recursively"`
}

// NewTreeTool returns a tool that recursively lists a directory tree.
func NewTreeTool() tool.Tool {
	return tool.NewFunctionTool("tree",
		"Recursively lists all files in a directory and its subdirectories. Use absolute paths when possible "+
			"to avoid ambiguity. Be cautious with deeply nested directories as this can potentially generate large "+
			"outputs. Consider using list_files instead if you only need the immediate contents of a directory.",
		func(_ context.Context, input TreeInput) (tool.Result, error) {
			var paths []string
			err := filepath.WalkDir(input.Dir, func(path string, _ fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if path != input.Dir {
					paths = append(paths, path)
				}
				return nil
			})
			if err != nil {
				return errorResult("Failed to traverse directory '%s': %v", input.Dir, err), nil
			}
			return tool.Result{Content: strings.Join(paths, "\n")}, nil
		})
}

// RunCommandInput are the parameters for the run_command tool.
type RunCommandInput struct {
	// Cmd is the executable to run.
	Cmd string `json:"cmd" jsonschema_description:"The command to run"`
	// Args are the arguments passed to the command.
	Args []string `json:"args" jsonschema_description:"The arguments to pass to the command"`
}

// NewRunCommandTool returns a tool that executes a command without a shell.
// The command is run directly, so shell syntax in arguments is not
// interpreted.
func NewRunCommandTool() tool.Tool {
	return tool.NewFunctionTool("run_command",
		"Executes a shell command with the specified arguments. The 'cmd' parameter is a string (like 'ls' or 'git'), "+
			"and 'args' is a list of strings for the command arguments (like ['-l', '/tmp']). Use with caution as shell "+
			"commands can be potentially dangerous. Always validate and sanitize inputs before passing them to this tool. "+
			"Avoid commands that require interactive input as this tool doesn't handle stdin interactions.",
		func(ctx context.Context, input RunCommandInput) (tool.Result, error) {
			cmd := exec.CommandContext(ctx, input.Cmd, input.Args...)
			var stdout, stderr strings.Builder
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			if err := cmd.Run(); err != nil {
				if _, ok := err.(*exec.ExitError); ok {
					return errorResult("Command failed: %s", stderr.String()), nil
				}
				return errorResult("Failed to execute command: %v", err), nil
			}
			return tool.Result{Content: stdout.String()}, nil
		})
}

func errorResult(format string, args ...any) tool.Result {
	return tool.Result{IsError: true, Content: fmt.Sprintf(format, args...)}
}
