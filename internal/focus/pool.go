package focus

import "sync"

// maxWorkers bounds concurrent focusing tasks for a single request.
const maxWorkers = 10

// ForEach runs fn(i) for every i in [0, n) on a pool of min(n, 10)
// workers and waits for all of them to finish. Each task writes into its
// own result slot owned by the caller; tasks are never cancelled early,
// so one task's failure cannot affect its siblings.
func ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	workers := n
	if workers > maxWorkers {
		workers = maxWorkers
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
