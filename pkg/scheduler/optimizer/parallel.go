package optimizer

import (
	"context"
	"sync"

	"github.com/zhiban/zhiban/pkg/model"
)

// BatchJob 一次批量优化任务：一个独立的排班计划及其迭代预算
type BatchJob struct {
	Schedule      *model.Schedule
	MaxIterations int
}

// BatchResult 批量优化的单个结果
type BatchResult struct {
	Index      int
	ScheduleID string
	Result     *model.OptimizationResult
}

// BatchRunner 并行批量优化器
// 每个工作协程处理互不相关的排班计划，单个计划内部仍是单写者串行填充
type BatchRunner struct {
	optimizer *Optimizer
	workers   int
}

// NewBatchRunner 创建批量优化器
func NewBatchRunner(o *Optimizer, workers int) *BatchRunner {
	if workers <= 0 {
		workers = 4
	}
	return &BatchRunner{
		optimizer: o,
		workers:   workers,
	}
}

// RunBatch 并行优化一批独立的排班计划
// 返回结果与输入顺序一致，ctx 取消后未开始的任务不再执行
func (b *BatchRunner) RunBatch(ctx context.Context, jobs []BatchJob) []BatchResult {
	if len(jobs) == 0 {
		return nil
	}

	jobChan := make(chan int, len(jobs))
	resultChan := make(chan BatchResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				job := jobs[idx]
				resultChan <- BatchResult{
					Index:      idx,
					ScheduleID: job.Schedule.ID.String(),
					Result:     b.optimizer.Optimize(ctx, job.Schedule, job.MaxIterations),
				}
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]BatchResult, len(jobs))
	for r := range resultChan {
		results[r.Index] = r
	}
	return results
}
