package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bongobongo2020/craft/client"
	"github.com/bongobongo2020/craft/graph"
	"github.com/bongobongo2020/craft/settings"
)

var (
	genImage    string
	genOut      string
	genModel    string
	genNegative string
	genSteps    int
	genDenoise  float64
	genWait     time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] PROMPT...",
	Short: "Submit a generation job and wait for the image",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genImage, "image", "", "reference image to condition the generation on")
	generateCmd.Flags().StringVar(&genOut, "out", "craft_output.png", "output file for the generated image")
	generateCmd.Flags().StringVar(&genModel, "model", "", "checkpoint model name (default: template default)")
	generateCmd.Flags().StringVar(&genNegative, "negative", "", "negative prompt")
	generateCmd.Flags().IntVar(&genSteps, "steps", 0, "sampler steps (default: template default)")
	generateCmd.Flags().Float64Var(&genDenoise, "denoise", 0.75, "denoise strength when a reference image is used")
	generateCmd.Flags().DurationVar(&genWait, "wait", 10*time.Minute, "how long to wait for the result")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	s, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	imageReady := make(chan string, 1)
	failed := make(chan string, 1)

	callbacks := &client.Callbacks{
		OnStatusChange: func(st client.Status) {
			switch st.Kind {
			case client.StatusProgress:
				if bar == nil {
					bar = progressbar.Default(100, "generating")
				}
				bar.Set(st.Percent)
			case client.StatusError:
				if st.Terminal || st.Class == client.ErrorProtocol {
					select {
					case failed <- st.Message:
					default:
					}
				} else {
					slog.Warn(st.Message)
				}
			}
		},
		OnImageGenerated: func(u string) {
			select {
			case imageReady <- u:
			default:
			}
		},
	}

	c := client.New(s, callbacks)
	defer c.Disconnect()

	opts := graph.DefaultOptions()
	if genModel != "" {
		opts.Model = genModel
	}
	if genSteps > 0 {
		opts.Steps = genSteps
	}
	opts.NegativePrompt = genNegative
	if genImage != "" {
		opts.Denoise = genDenoise
	}
	c.SetGenerationOptions(opts)

	if err := c.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", s.WSEndpoint, err)
	}

	// pick up settings edits made while we wait for the job
	ctx, cancelWatch := context.WithCancel(cmd.Context())
	defer cancelWatch()
	if err := settings.Watch(ctx, settingsPath, func(ns settings.Settings) {
		slog.Info("settings changed, reconnecting", "http_endpoint", ns.HTTPEndpoint)
		c.UpdateSettings(ns)
		c.Connect()
	}); err != nil {
		slog.Warn("settings watch unavailable", "error", err)
	}

	imageName := ""
	if genImage != "" {
		f, err := os.Open(genImage)
		if err != nil {
			return err
		}
		imageName, err = c.UploadImage(f, filepath.Base(genImage))
		f.Close()
		if err != nil {
			return err
		}
	}

	promptID, err := c.GenerateImage(prompt, imageName)
	if err != nil {
		return err
	}
	slog.Info("waiting for result", "prompt_id", promptID)

	select {
	case u := <-imageReady:
		if bar != nil {
			bar.Finish()
		}
		data, err := c.FetchImage(u)
		if err != nil {
			return err
		}
		if err := os.WriteFile(genOut, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("saved %s (%d bytes)\n", genOut, len(data))
		return nil
	case msg := <-failed:
		return errors.New(msg)
	case <-time.After(genWait):
		return fmt.Errorf("timed out after %s waiting for the image", genWait)
	}
}
