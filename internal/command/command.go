package command

import (
	commandHandler "joingo/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewStoreHandler, commandHandler.NewVoiceHandler)

type Command struct {
	storeCommandHandler *commandHandler.StoreHandler
	voiceCommandHandler *commandHandler.VoiceHandler
}

// NewCommand .
func NewCommand(
	storeCommandHandler *commandHandler.StoreHandler,
	voiceCommandHandler *commandHandler.VoiceHandler,
) *Command {
	return &Command{
		storeCommandHandler: storeCommandHandler,
		voiceCommandHandler: voiceCommandHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "ensure-indexes",
			Short: "create document store indexes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				command, cleanup, err := newCmd()
				if err != nil {
					return err
				}
				defer cleanup()

				return command.storeCommandHandler.EnsureIndexes(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "voice-token <token>",
			Short: "verify a voice capability token and print its payload",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				command, cleanup, err := newCmd()
				if err != nil {
					return err
				}
				defer cleanup()

				return command.voiceCommandHandler.VerifyToken(cmd, args)
			},
		},
	)
}
