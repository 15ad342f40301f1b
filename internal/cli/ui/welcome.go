package ui

import "fmt"

// PrintWelcome выводит приветствие
func PrintWelcome() {
	fmt.Println(ColorBold + IconRobot + " webGuide v0.1.0" + ColorReset)
	fmt.Println(ColorGray + "Агент, записывающий иллюстрированные инструкции по работе с веб-приложениями" + ColorReset)
	fmt.Println(ColorGray + "Используется: Firefox + OpenAI GPT-4o" + ColorReset)
	fmt.Println()
	PrintHelp()
	fmt.Println(ColorCyan + IconBulb + " Совет:" + ColorReset + " первый прогон для приложения попросит войти вручную; профиль сохранится для следующих прогонов")
	fmt.Println()
}

// PrintHelp выводит список доступных команд
func PrintHelp() {
	fmt.Println(ColorYellow + IconList + " Доступные команды:" + ColorReset)
	fmt.Println("  " + ColorGreen + "task" + ColorReset + " <текст>   - Создать прогон задачи")
	fmt.Println("  " + ColorGreen + "runs" + ColorReset + "           - Список прогонов")
	fmt.Println("  " + ColorGreen + "run" + ColorReset + " <id>       - Выполнить прогон")
	fmt.Println("  " + ColorGreen + "show" + ColorReset + " <id>      - Детали и шаги прогона")
	fmt.Println("  " + ColorGreen + "logs" + ColorReset + " <id>      - LLM логи прогона")
	fmt.Println("  " + ColorGreen + "report" + ColorReset + " <id>    - Путь к отчету прогона")
	fmt.Println("  " + ColorGreen + "clear" + ColorReset + "          - Очистить экран")
	fmt.Println("  " + ColorGreen + "exit" + ColorReset + "           - Выход")
	fmt.Println()
}
