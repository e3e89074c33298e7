package utils

import (
	"path/filepath"
	"testing"
)

func TestOutputName(t *testing.T) {
	type args struct {
		dir   string
		input string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "plain",
			args: args{dir: "out", input: "/tmp/cat.jpg"},
			want: filepath.Join("out", "cat.png"),
		},
		{
			name: "compressed",
			args: args{dir: "out", input: "anim.gif.zst"},
			want: filepath.Join("out", "anim.png"),
		},
		{
			name: "stdin",
			args: args{dir: ".", input: "-"},
			want: "stdin.png",
		},
		{
			name: "no extension",
			args: args{dir: "out", input: "image"},
			want: filepath.Join("out", "image.png"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputName(tt.args.dir, tt.args.input); got != tt.want {
				t.Errorf("OutputName() = %v, want %v", got, tt.want)
			}
		})
	}
}
