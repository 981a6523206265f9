package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "retrieve <board> <class> <subject> <topic>",
		Short: "Fetch a topic and focus it for question generation",
		Args:  cobra.ExactArgs(4),
		Run:   runRetrieve,
	}

	cmd.Flags().StringP("difficulty", "d", "medium", "Difficulty: easy, medium, or hard")
	cmd.Flags().IntP("questions", "q", 0, "Number of questions planned (scales the chunk budget)")
	cmd.Flags().StringSliceP("subtopics", "s", nil, "Subtopic ids to narrow the topic to")

	RootCmd.AddCommand(cmd)
}

func runRetrieve(cmd *cobra.Command, args []string) {
	difficulty, _ := cmd.Flags().GetString("difficulty")
	questions, _ := cmd.Flags().GetInt("questions")
	subtopics, _ := cmd.Flags().GetStringSlice("subtopics")

	p := newPipeline()
	topic, err := p.fetcher.Fetch(args[0], args[1], args[2], args[3], subtopics)
	if err != nil {
		exitErr("fetch topic", err)
	}

	result := p.focuser.Focus(cmd.Context(), topic.Text, topic.Name, difficulty, questions)

	if formatFlag == "text" {
		fmt.Println(result.Text)
		return
	}

	out := map[string]any{
		"topic_num":       topic.ID,
		"topic_name":      topic.Name,
		"book_name":       topic.Book,
		"focused_content": result.Text,
		"source_chunks":   result.SourceChunks,
		"retained_chunks": result.RetainedChunks,
		"status":          result.Status,
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
