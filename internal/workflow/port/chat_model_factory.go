// Package port 声明工作流层向基础设施的依赖接口
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 是生成链对提供商网关的最小依赖。
// name 为空时实现返回配置的默认提供商；实现负责惰性初始化与实例复用。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
