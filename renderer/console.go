package renderer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/caomingyu/soulqun/bus"
	"github.com/caomingyu/soulqun/message"
	"github.com/caomingyu/soulqun/session"
)

func NewConsoleRenderer(showLogs bool) *ConsoleRenderer {
	return &ConsoleRenderer{showLogs: showLogs}
}

// ConsoleRenderer prints the chat to stdout as it happens and the soul
// report at the end.
type ConsoleRenderer struct {
	showLogs bool
}

func (c *ConsoleRenderer) Render(b bus.Bus, wg *sync.WaitGroup) error {
	ch := b.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for m := range ch {
			switch m.Kind {
			case message.KindSystem:
				fmt.Printf("\n%s\n", m.Text)
			case message.KindLog:
				if c.showLogs {
					fmt.Printf("  · %s\n", m.Text)
				}
			case message.KindPersona:
				c.printPersona(m)
			}
		}
	}()

	return nil
}

func (c *ConsoleRenderer) printPersona(m *message.Message) {
	name := "?"
	avatar := ""
	if m.From != nil {
		name = m.From.DisplayName
		avatar = m.From.Avatar
	}
	switch {
	case m.Breakdown:
		fmt.Printf("%s %s: 💔 %s\n", avatar, name, m.Text)
	case m.Betrayal:
		fmt.Printf("%s %s: ⚡ %s\n", avatar, name, m.Text)
	default:
		fmt.Printf("%s %s: %s\n", avatar, name, m.Text)
	}
}

// Finalize prints the end-of-session soul purity report.
func (c *ConsoleRenderer) Finalize(sum *session.Summary) error {
	if sum == nil {
		return nil
	}
	var b strings.Builder
	b.WriteString("\n==================================================\n")
	b.WriteString("🧪 灵魂纯度检测报告\n")
	b.WriteString("==================================================\n\n")

	b.WriteString(fmt.Sprintf("灵魂类型: %s\n\n", sum.Soul.SoulType))
	for _, comp := range sum.Soul.Components {
		b.WriteString(fmt.Sprintf("  %-8s %5.1f%%  %s\n", comp.Name, comp.Percentage, comp.Description))
	}
	if len(sum.Soul.SpecialTraits) > 0 {
		b.WriteString("\n特质: " + strings.Join(sum.Soul.SpecialTraits, " / ") + "\n")
	}
	b.WriteString("\n🔥 毒舌点评: " + sum.Soul.Roast + "\n")
	b.WriteString("💡 建议: " + sum.Soul.Advice + "\n")

	if sum.BetrayalSummary != "" {
		b.WriteString("\n" + sum.BetrayalSummary + "\n")
	}
	if len(sum.Highlights) > 0 {
		b.WriteString("\n💔 破防名场面:\n")
		for _, h := range sum.Highlights {
			b.WriteString(fmt.Sprintf("  第%d轮 %s 被「%s」击穿: %s\n", h.Turn, h.PersonaId, h.Trigger, h.Response))
		}
	}

	if len(sum.Reviews) > 0 {
		b.WriteString("\n📱 各平台给你的评价:\n")
		ids := make([]string, 0, len(sum.Reviews))
		for id := range sum.Reviews {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			b.WriteString(fmt.Sprintf("  %s: %s\n", id, sum.Reviews[id]))
		}
	}

	b.WriteString(fmt.Sprintf("\n本次群聊共 %d 轮。%s\n", sum.Turns, sum.QuickSummary))
	fmt.Print(b.String())
	return nil
}
