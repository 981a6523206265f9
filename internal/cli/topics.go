package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "topics <board> <class> <subject>",
		Short: "List topics for a subject",
		Args:  cobra.ExactArgs(3),
		Run:   runTopics,
	}

	RootCmd.AddCommand(cmd)
}

func runTopics(cmd *cobra.Command, args []string) {
	p := newPipeline()
	topics := p.catalog.Topics(args[0], args[1], args[2])

	if formatFlag == "text" {
		nums := make([]string, 0, len(topics))
		for num := range topics {
			nums = append(nums, num)
		}
		sort.Strings(nums)
		for _, num := range nums {
			fmt.Printf("%s\t%s\n", num, topics[num])
		}
		return
	}

	if topics == nil {
		topics = map[string]string{}
	}
	b, _ := json.MarshalIndent(topics, "", "  ")
	fmt.Println(string(b))
}
