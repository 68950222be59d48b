package all

// 统一导入所有内置策略以触发 init() 注册。
// cmd 入口只需要导入这一处，新增策略时不再修改入口代码。

import (
	_ "github.com/yss-community/strategyharness/internal/strategies/fibonacci"
	_ "github.com/yss-community/strategyharness/internal/strategies/martingale"
	_ "github.com/yss-community/strategyharness/internal/strategies/randompick"
)
