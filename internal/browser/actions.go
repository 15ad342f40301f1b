package browser

import (
	"context"
	"fmt"
	"strings"
)

// Клик по центру элемента через MouseEvent, а не page.Click: SPA-фреймворки
// вешают обработчики на mousedown/mouseup, и синтетическая последовательность
// срабатывает там, где обычный клик по селектору промахивается.
const clickByTextJS = `
(text) => {
	const target = (text || "").trim().toLowerCase();
	if (!target) {
		return { clicked: false, reason: "empty" };
	}

	const elements = Array.from(document.querySelectorAll('*'))
		.filter(el => el.innerText && el.innerText.toLowerCase().includes(target));

	// Берем элемент с наименьшим текстом - самый специфичный из содержащих
	const el = elements.reduce((smallest, current) =>
		!smallest || current.innerText.length < smallest.innerText.length ? current : smallest
	, null);

	if (!el) {
		return { clicked: false, reason: "no matching element found" };
	}

	const rect = el.getBoundingClientRect();
	if (rect.width === 0 || rect.height === 0) {
		return { clicked: false, reason: "element has zero area" };
	}
	const centerX = rect.x + rect.width / 2;
	const centerY = rect.y + rect.height / 2;

	el.scrollIntoView({ block: "center", inline: "center" });

	const opts = { bubbles: true, cancelable: true, clientX: centerX, clientY: centerY };
	el.dispatchEvent(new MouseEvent('mousedown', opts));
	el.dispatchEvent(new MouseEvent('mouseup', opts));
	el.dispatchEvent(new MouseEvent('click', opts));

	return {
		clicked: true,
		tag: el.tagName,
		text: (el.innerText || "").trim().slice(0, 200),
		rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height }
	};
}
`

// ClickByText находит самый специфичный элемент, содержащий заданный текст,
// и кликает по его центру синтетическими событиями мыши.
func (b *PlaywrightBrowser) ClickByText(ctx context.Context, text string) (*ClickResult, error) {
	page := b.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}

	query := strings.TrimSpace(text)
	if query == "" {
		return nil, fmt.Errorf("пустой текст элемента для клика")
	}

	raw, err := page.Evaluate(clickByTextJS, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения клика по тексту %q: %w", query, err)
	}

	result, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("неожиданный результат клика по тексту %q", query)
	}
	if clicked, _ := result["clicked"].(bool); !clicked {
		reason, _ := result["reason"].(string)
		return nil, fmt.Errorf("элемент с текстом %q не кликнут: %s", query, reason)
	}

	click := &ClickResult{}
	click.Text, _ = result["text"].(string)
	click.Tag, _ = result["tag"].(string)
	if rect, ok := result["rect"].(map[string]interface{}); ok {
		click.X, _ = rect["x"].(float64)
		click.Y, _ = rect["y"].(float64)
		click.Width, _ = rect["width"].(float64)
		click.Height, _ = rect["height"].(float64)
	}
	return click, nil
}

// Клик по координатам элемента из снимка. Поиск по тексту находит самый
// специфичный элемент на всей странице и может промахнуться, когда старый
// и только что появившийся элементы носят одну метку; elementFromPoint
// бьет ровно в тот элемент, который выбрал резолвер.
const clickAtPointJS = `
(args) => {
	const el = document.elementFromPoint(args.x, args.y);
	if (!el) {
		return { clicked: false, reason: "no element at point" };
	}

	const rect = el.getBoundingClientRect();
	const opts = { bubbles: true, cancelable: true, clientX: args.x, clientY: args.y };
	el.dispatchEvent(new MouseEvent('mousedown', opts));
	el.dispatchEvent(new MouseEvent('mouseup', opts));
	el.dispatchEvent(new MouseEvent('click', opts));

	return {
		clicked: true,
		tag: el.tagName,
		text: (el.innerText || "").trim().slice(0, 200),
		rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height }
	};
}
`

// ClickAt кликает по точке страницы синтетическими событиями мыши.
func (b *PlaywrightBrowser) ClickAt(ctx context.Context, x, y float64) (*ClickResult, error) {
	page := b.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}

	raw, err := page.Evaluate(clickAtPointJS, map[string]interface{}{"x": x, "y": y})
	if err != nil {
		return nil, fmt.Errorf("ошибка клика по точке (%.0f, %.0f): %w", x, y, err)
	}

	result, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("неожиданный результат клика по точке (%.0f, %.0f)", x, y)
	}
	if clicked, _ := result["clicked"].(bool); !clicked {
		reason, _ := result["reason"].(string)
		return nil, fmt.Errorf("клик по точке (%.0f, %.0f) не выполнен: %s", x, y, reason)
	}

	click := &ClickResult{}
	click.Text, _ = result["text"].(string)
	click.Tag, _ = result["tag"].(string)
	if rect, ok := result["rect"].(map[string]interface{}); ok {
		click.X, _ = rect["x"].(float64)
		click.Y, _ = rect["y"].(float64)
		click.Width, _ = rect["width"].(float64)
		click.Height, _ = rect["height"].(float64)
	}
	return click, nil
}

// Заполнение поля по координатам из снимка, той же последовательностью
// нативный сеттер + события, что и FillByLabel.
const fillAtPointJS = `
(args) => {
	const fillValue = args.value || "";

	let inputEl = document.elementFromPoint(args.x, args.y);
	if (!inputEl) {
		return { filled: false, reason: "no element at point" };
	}
	if (inputEl.tagName !== 'INPUT' && inputEl.tagName !== 'TEXTAREA' &&
		inputEl.getAttribute('contenteditable') !== 'true') {
		inputEl = inputEl.querySelector('input, textarea, [contenteditable="true"]') ||
			inputEl.closest('input, textarea, [contenteditable="true"]');
	}
	if (!inputEl) {
		return { filled: false, reason: "no input field at point" };
	}

	inputEl.focus();

	const setNative = (el, val) => {
		const proto = el.tagName === 'TEXTAREA'
			? HTMLTextAreaElement.prototype
			: HTMLInputElement.prototype;
		const setter = Object.getOwnPropertyDescriptor(proto, 'value');
		if (setter && setter.set) {
			setter.set.call(el, val);
		} else {
			el.value = val;
		}
	};

	const fire = (el, type) => {
		if (type === 'keydown' || type === 'keyup') {
			el.dispatchEvent(new KeyboardEvent(type, { bubbles: true, cancelable: true }));
		} else {
			el.dispatchEvent(new Event(type, { bubbles: true, cancelable: true }));
		}
	};

	if (inputEl.tagName === 'INPUT' || inputEl.tagName === 'TEXTAREA') {
		setNative(inputEl, fillValue);
		fire(inputEl, 'keydown');
		fire(inputEl, 'input');
		fire(inputEl, 'keyup');
		fire(inputEl, 'change');

		setNative(inputEl, fillValue + ' ');
		fire(inputEl, 'input');
		setNative(inputEl, fillValue);
		fire(inputEl, 'input');
		fire(inputEl, 'change');
	} else if (inputEl.getAttribute('contenteditable') === 'true') {
		inputEl.innerText = fillValue;
		fire(inputEl, 'input');
	} else {
		return { filled: false, reason: "element is not fillable" };
	}

	return { filled: true, tag: inputEl.tagName };
}
`

// FillAt заполняет поле ввода по точке страницы.
func (b *PlaywrightBrowser) FillAt(ctx context.Context, x, y float64, value string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	raw, err := page.Evaluate(fillAtPointJS, map[string]interface{}{
		"x": x, "y": y, "value": value,
	})
	if err != nil {
		return fmt.Errorf("ошибка заполнения поля в точке (%.0f, %.0f): %w", x, y, err)
	}

	result, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("неожиданный результат заполнения в точке (%.0f, %.0f)", x, y)
	}
	if filled, _ := result["filled"].(bool); !filled {
		reason, _ := result["reason"].(string)
		return fmt.Errorf("поле в точке (%.0f, %.0f) не заполнено: %s", x, y, reason)
	}
	return nil
}

// Заполнение через нативный сеттер value: React и Vue перехватывают свойство
// value на прототипе, и прямое присваивание el.value не попадает в их state.
// После установки значения добавляем и убираем один символ - дебаунс-валидаторы
// иначе не замечают программный ввод.
const fillByLabelJS = `
(args) => {
	const target = (args.label || "").trim().toLowerCase();
	const fillValue = args.value || "";
	if (!target) {
		return { filled: false, reason: "empty" };
	}

	const labelElements = Array.from(document.querySelectorAll('*'))
		.filter(el => el.innerText && el.innerText.toLowerCase().includes(target));

	const labelEl = labelElements.reduce((smallest, current) =>
		!smallest || current.innerText.length < smallest.innerText.length ? current : smallest
	, null);

	let inputEl = null;

	if (labelEl) {
		const labelFor = labelEl.getAttribute('for');
		if (labelFor) {
			inputEl = document.getElementById(labelFor);
		}
		if (!inputEl) {
			inputEl = labelEl.querySelector('input, textarea, [contenteditable="true"]');
		}
		if (!inputEl) {
			const next = labelEl.nextElementSibling;
			if (next && (next.tagName === 'INPUT' || next.tagName === 'TEXTAREA')) {
				inputEl = next;
			}
		}
		if (!inputEl && labelEl.parentElement) {
			inputEl = labelEl.parentElement.querySelector('input, textarea, [contenteditable="true"]');
		}
	}

	// Запасной путь: поиск по placeholder и aria-label
	if (!inputEl) {
		const candidates = Array.from(document.querySelectorAll('input, textarea, [contenteditable="true"]'))
			.filter(el => {
				const placeholder = (el.getAttribute('placeholder') || '').toLowerCase();
				const ariaLabel = (el.getAttribute('aria-label') || '').toLowerCase();
				return placeholder.includes(target) || ariaLabel.includes(target);
			});
		inputEl = candidates.reduce((smallest, current) => {
			const currentText = ((current.getAttribute('placeholder') || current.getAttribute('aria-label')) || '');
			const smallestText = smallest ? ((smallest.getAttribute('placeholder') || smallest.getAttribute('aria-label')) || '') : '';
			return !smallest || currentText.length < smallestText.length ? current : smallest;
		}, null);
	}

	if (!inputEl) {
		return { filled: false, reason: "no matching input field found" };
	}

	const rect = inputEl.getBoundingClientRect();
	inputEl.scrollIntoView({ block: "center", inline: "center" });
	inputEl.focus();

	const setNative = (el, val) => {
		const proto = el.tagName === 'TEXTAREA'
			? HTMLTextAreaElement.prototype
			: HTMLInputElement.prototype;
		const setter = Object.getOwnPropertyDescriptor(proto, 'value');
		if (setter && setter.set) {
			setter.set.call(el, val);
		} else {
			el.value = val;
		}
	};

	const fire = (el, type) => {
		if (type === 'keydown' || type === 'keyup') {
			el.dispatchEvent(new KeyboardEvent(type, { bubbles: true, cancelable: true }));
		} else {
			el.dispatchEvent(new Event(type, { bubbles: true, cancelable: true }));
		}
	};

	if (inputEl.tagName === 'INPUT' || inputEl.tagName === 'TEXTAREA') {
		setNative(inputEl, fillValue);
		fire(inputEl, 'keydown');
		fire(inputEl, 'input');
		fire(inputEl, 'keyup');
		fire(inputEl, 'change');

		setNative(inputEl, fillValue + ' ');
		fire(inputEl, 'input');
		setNative(inputEl, fillValue);
		fire(inputEl, 'input');
		fire(inputEl, 'change');
	} else if (inputEl.getAttribute('contenteditable') === 'true') {
		inputEl.innerText = fillValue;
		fire(inputEl, 'input');
	} else {
		return { filled: false, reason: "element is not fillable" };
	}

	return {
		filled: true,
		tag: inputEl.tagName,
		rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height }
	};
}
`

// FillByLabel находит поле ввода по тексту метки, placeholder или aria-label
// и заполняет его значением с полной последовательностью событий ввода.
func (b *PlaywrightBrowser) FillByLabel(ctx context.Context, label, value string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	query := strings.TrimSpace(strings.Trim(label, `'"`))
	if query == "" {
		return fmt.Errorf("пустая метка поля для заполнения")
	}

	raw, err := page.Evaluate(fillByLabelJS, map[string]interface{}{
		"label": query,
		"value": value,
	})
	if err != nil {
		return fmt.Errorf("ошибка заполнения поля %q: %w", query, err)
	}

	result, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("неожиданный результат заполнения поля %q", query)
	}
	if filled, _ := result["filled"].(bool); !filled {
		reason, _ := result["reason"].(string)
		return fmt.Errorf("поле %q не заполнено: %s", query, reason)
	}
	return nil
}
