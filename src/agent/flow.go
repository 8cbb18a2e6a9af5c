package agent

import (
	"context"

	"go.uber.org/zap"

	"pypestream-rpa/src/report"
)

// HandleStructuredIntake fills the intake form, answers the two yes/no
// prompts and pushes through the following screens.
func (a *Agent) HandleStructuredIntake(ctx context.Context) {
	a.logger.Info("Starting structured intake flow")
	for _, f := range IntakeFields {
		a.FillField(ctx, f.Labels, f.Value, f.Description)
		a.pause(ctx, betweenFields)
	}

	a.AttemptClick(ctx, SafeToLiveTargets, "safe-to-live yes", defaultClickTimeout)
	a.AttemptClick(ctx, InjuriesTargets, "injuries no", defaultClickTimeout)

	for i := 0; i < proceedAttempts; i++ {
		if ctx.Err() != nil {
			return
		}
		if a.ProceedNext(ctx) {
			a.pause(ctx, hitNextWait)
		} else {
			a.pause(ctx, missedNextWait)
		}
	}
}

// HandleReviewScreen clicks through the review summary.
func (a *Agent) HandleReviewScreen(ctx context.Context) {
	a.logger.Info("Looking for review screen proceed")
	a.AttemptClick(ctx, ReviewTargets, "review proceed button", defaultClickTimeout)
}

// HandleChatMode answers chat prompts until the screen has offered nothing
// actionable for ChatIdleCycles consecutive polls.
func (a *Agent) HandleChatMode(ctx context.Context) {
	a.logger.Info("Entering chat mode loop")
	idle := 0
	for idle < a.opts.ChatIdleCycles {
		if ctx.Err() != nil {
			return
		}
		if a.HandleAddressRequest(ctx) {
			idle = 0
			continue
		}

		if m := a.lookup(QuickReplyTargets); m != nil {
			a.click(m, 0, 0)
			a.logger.Info("Clicked chat quick-reply button", zap.String("text", m.Text))
			a.record(report.Step{Name: "chat quick reply", Status: report.StatusPassed, Text: m.Text, Confidence: m.Confidence})
			idle = 0
			a.pause(ctx, afterClickWait)
			continue
		}

		if m := a.lookup(ChatInputTargets); m != nil {
			a.click(m, 0, inputOffsetY)
			a.pause(ctx, chatTypeWait)
			a.input.Type(ChatReply)
			a.logger.Info("Sent chat text response", zap.String("prompt", m.Text))
			a.record(report.Step{Name: "chat text response", Status: report.StatusPassed, Text: m.Text, Confidence: m.Confidence})
			idle = 0
			a.pause(ctx, afterClickWait)
			continue
		}

		idle++
		a.pause(ctx, a.opts.PollInterval)
	}
	a.logger.Info("Chat loop ended without further prompts", zap.Int("idle_cycles", idle))
}

// HandleAddressRequest answers an address prompt with the canned address.
// It reports whether a prompt was on screen.
func (a *Agent) HandleAddressRequest(ctx context.Context) bool {
	prompt := a.lookup(AddressTargets)
	if prompt == nil {
		return false
	}
	a.logger.Info("Address prompt detected", zap.String("text", prompt.Text))
	a.click(prompt, 0, addressOffsetY)
	a.pause(ctx, addressTypeWait)
	a.input.Type(AddressValue)
	a.pause(ctx, addressEnterWait)
	if err := a.input.Tap("enter"); err != nil {
		a.logger.Warn("Failed to submit address", zap.Error(err))
	}
	a.pause(ctx, afterClickWait)
	a.record(report.Step{Name: "address", Status: report.StatusPassed, Text: prompt.Text, Confidence: prompt.Confidence})
	a.AttemptClick(ctx, AddressNextTargets, "address proceed button", addressNextTimeout)
	return true
}
