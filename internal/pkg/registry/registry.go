package registry

import (
	"fmt"
	"sort"
	"sync"

	"coursehub/internal/pkg/config"
	"coursehub/internal/pkg/events"
	"coursehub/internal/pkg/middleware"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 共享服务键
const (
	ServiceCourses = "course.service"
	ServiceUsers   = "user.service"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Config    *config.Config
	DB        *gorm.DB
	SQL       *sqlx.DB
	Cache     cache.CacheService
	Router    *gin.Engine
	Logger    *zap.Logger
	Uploader  uploader.Uploader
	Publisher events.Publisher
	Auth      *middleware.Authenticator

	// Services 模块间共享的服务，键由提供方模块定义
	Services map[string]any
}

// Provide 发布一个可被后续模块使用的服务
func (c *ModuleContext) Provide(name string, svc any) {
	if c.Services == nil {
		c.Services = make(map[string]any)
	}
	c.Services[name] = svc
}

// Lookup 按名称获取服务，类型不符时返回 false
func Lookup[T any](c *ModuleContext, name string) (T, bool) {
	var zero T
	v, ok := c.Services[name]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	// 例如：course 模块需要先于 order 模块初始化
	Priority() int
}

var (
	mu             sync.Mutex
	moduleRegistry = make(map[string]Module)
)

// Register 注册模块
func Register(module Module) {
	mu.Lock()
	defer mu.Unlock()
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]Module, len(moduleRegistry))
	for k, v := range moduleRegistry {
		out[k] = v
	}
	return out
}

// Ordered 按优先级排序，优先级相同按名称排序
func Ordered() []Module {
	mods := GetModules()
	modules := make([]Module, 0, len(mods))
	for _, m := range mods {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range Ordered() {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		if ctx.Logger != nil {
			ctx.Logger.Debug("module initialized", zap.String("module", module.Name()), zap.Int("priority", module.Priority()))
		}
	}
	return nil
}
